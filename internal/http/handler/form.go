package handler

import (
	"bytes"
	"encoding/json"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"projectdrop/internal/service"
)

// formData feeds the submission form template.
type formData struct {
	Term          service.Term
	Grades        []string
	CatalogJSON   template.JS
	MaxFileSizeMB int
}

// ShowForm renders the submission form. The whole class catalog is embedded
// in the page so the section dropdown follows the selected grade without a
// round trip.
func ShowForm(subSvc service.SubmissionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, err := subSvc.Classes(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if len(cat.Grades) == 0 {
			return writeError(c, fiber.StatusServiceUnavailable, "NO_CLASSES", "no classes are registered")
		}

		catalog, err := json.Marshal(cat.Sections)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		var buf bytes.Buffer
		if err := formTmpl.Execute(&buf, formData{
			Term:          subSvc.Term(),
			Grades:        cat.Grades,
			CatalogJSON:   template.JS(catalog),
			MaxFileSizeMB: service.MaxFileSize >> 20,
		}); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		return c.Type("html").SendString(buf.String())
	}
}

var formTmpl = template.Must(template.New("form").Parse(formHTML))

const formHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Student Project Submissions</title>
  <style>
    body { font-family: sans-serif; max-width: 640px; margin: 2rem auto; padding: 0 1rem; }
    h1 { font-size: 1.4rem; }
    .term { color: #555; margin-bottom: 1.5rem; }
    label { display: block; margin-top: 1rem; font-weight: bold; }
    input, select { width: 100%; padding: .5rem; margin-top: .25rem; box-sizing: border-box; }
    button { margin-top: 1.5rem; padding: .6rem 1.2rem; cursor: pointer; }
    #status { margin-top: 1.5rem; padding: .75rem; display: none; }
    #status.progress { display: block; background: #eef; }
    #status.success { display: block; background: #efe; }
    #status.error { display: block; background: #fee; }
    .notes { margin-top: 2rem; color: #777; font-size: .85rem; }
  </style>
</head>
<body>
  <h1>📚 Student Project Submissions</h1>
  <p class="term">Academic year: <strong>{{.Term.Year}}</strong> | Semester: <strong>{{.Term.Semester}}</strong></p>

  <form id="submission-form">
    <label for="grade">Grade</label>
    <select id="grade" name="grade_level">
      {{range .Grades}}<option value="{{.}}">{{.}}</option>{{end}}
    </select>

    <label for="section">Section</label>
    <select id="section" name="section"></select>

    <label for="student_name">Full student name</label>
    <input id="student_name" name="student_name" type="text" placeholder="e.g. Ahmed Ali Omar" />

    <label for="project_title">Project title</label>
    <input id="project_title" name="project_title" type="text" placeholder="e.g. Renewable Energy" />

    <label for="file">Project file (PDF only, max {{.MaxFileSizeMB}} MB)</label>
    <input id="file" name="file" type="file" accept="application/pdf" />

    <button type="submit">🚀 Upload project</button>
  </form>

  <div id="status"></div>

  <div class="notes">
    <p>• Only PDF files are accepted.</p>
    <p>• Maximum file size: {{.MaxFileSizeMB}} MB.</p>
    <p>• Your project is stored automatically in the class folder.</p>
  </div>

  <script>
    const sections = {{.CatalogJSON}};
    const gradeSel = document.getElementById('grade');
    const sectionSel = document.getElementById('section');

    function fillSections() {
      sectionSel.innerHTML = '';
      (sections[gradeSel.value] || []).forEach(function (s) {
        const opt = document.createElement('option');
        opt.value = s;
        opt.textContent = s;
        sectionSel.appendChild(opt);
      });
    }
    gradeSel.addEventListener('change', fillSections);
    fillSections();

    const form = document.getElementById('submission-form');
    const status = document.getElementById('status');

    form.addEventListener('submit', async function (e) {
      e.preventDefault();
      status.className = 'progress';
      status.textContent = 'Uploading project, please wait…';

      try {
        const resp = await fetch('/submissions', { method: 'POST', body: new FormData(form) });
        const body = await resp.json();

        if (resp.ok) {
          status.className = 'success';
          status.innerHTML = '';
          status.appendChild(document.createTextNode('✅ ' + body.message + ' '));
          const link = document.createElement('a');
          link.href = body.submission.file_url;
          link.target = '_blank';
          link.rel = 'noopener';
          link.textContent = '🔗 View your file';
          status.appendChild(link);
          form.reset();
          fillSections();
        } else {
          status.className = 'error';
          status.innerHTML = '';
          const msgs = (body.error && body.error.details && body.error.details.length)
            ? body.error.details
            : [body.error ? body.error.message : 'upload failed'];
          msgs.forEach(function (m) {
            const p = document.createElement('p');
            p.textContent = '⚠️ ' + m;
            status.appendChild(p);
          });
        }
      } catch (err) {
        status.className = 'error';
        status.textContent = 'Request failed: ' + err;
      }
    });
  </script>
</body>
</html>
`
