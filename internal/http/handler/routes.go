package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"projectdrop/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; the submission workflow lives in the service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, subSvc service.SubmissionService) {
	app.Get("/", ShowForm(subSvc))
	app.Post("/submissions", CreateSubmission(subSvc))
	app.Get("/submissions", ListSubmissions(subSvc))
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
}

// HealthCheck reports DB connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// CreateSubmission accepts the multipart submission form (fields:
// student_name, project_title, grade_level, section, file) and runs the
// workflow. Validation problems come back as a 400 with every violated rule;
// any later failure is reported with the underlying message and nothing
// already uploaded is rolled back.
func CreateSubmission(subSvc service.SubmissionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := service.SubmissionInput{
			StudentName:  c.FormValue("student_name"),
			ProjectTitle: c.FormValue("project_title"),
			GradeLevel:   c.FormValue("grade_level"),
			Section:      c.FormValue("section"),
		}

		// A missing file is a validation problem, not a transport error;
		// the service reports it together with the other rules.
		if fh, err := c.FormFile("file"); err == nil && fh != nil {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			defer f.Close()
			in.File = f
			in.FileSize = fh.Size
		}

		sub, err := subSvc.Submit(c.UserContext(), in)
		if err != nil {
			var verrs service.ValidationErrors
			if errors.As(err, &verrs) {
				return writeErrorDetails(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "submission is invalid", verrs)
			}
			// Surface the triggering error verbatim so the student knows
			// what failed and can retry.
			return writeError(c, fiber.StatusBadGateway, "UPLOAD_FAILED", err.Error())
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":    "project uploaded successfully",
			"submission": sub,
		})
	}
}

// ListSubmissions returns recent submissions with limit & offset.
func ListSubmissions(subSvc service.SubmissionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limitStr := c.Query("limit", "10")
		offsetStr := c.Query("offset", "0")
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := subSvc.ListRecent(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}
