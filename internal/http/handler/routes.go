package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"dochub/internal/ingest"
	"dochub/internal/model"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: parsing and status mapping only, no business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc ingest.Service) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/documents", ListDocuments(svc))
	app.Post("/documents", SubmitDocuments(svc))
	app.Post("/connectors/:id/sync", SyncConnector(svc))
}

// HealthCheck reports readiness. With the postgres store backend it pings
// the database; the jsonfile backend has no external dependency, so a nil
// db is healthy by definition.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// documentListResponse wraps the full collection.
type documentListResponse struct {
	Data  []model.DocumentRecord `json:"data"`
	Total int                    `json:"total"`
}

// submitResponse carries the created record plus any per-file rejections
// from validation, so a partially accepted batch is fully reportable.
type submitResponse struct {
	Document *model.DocumentRecord `json:"document"`
	Rejected []ingest.Rejection    `json:"rejected"`
}

// ListDocuments returns the whole document collection in insertion order.
func ListDocuments(svc ingest.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records, err := svc.ListDocuments(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(documentListResponse{Data: records, Total: len(records)})
	}
}

// SubmitDocuments handles a manual multipart submission. Files go in the
// repeated "files" field; title, category, description, accessLevel and
// tags are ordinary form values. Each file's lastModifiedEpochMs may be
// supplied as a repeated form value aligned with the files.
func SubmitDocuments(svc ingest.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mf, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "MULTIPART_REQUIRED", "multipart form is required")
		}

		fileHeaders := mf.File["files"]
		if len(fileHeaders) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", "at least one file is required")
		}

		lastModified := mf.Value["lastModifiedEpochMs"]

		uploads := make([]ingest.Upload, 0, len(fileHeaders))
		for i, fh := range fileHeaders {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			defer f.Close()

			ct := fh.Header.Get("Content-Type")
			if ct == "" {
				ct = "application/octet-stream"
			}

			modified := time.Now().UnixMilli()
			if i < len(lastModified) {
				if ms, err := strconv.ParseInt(lastModified[i], 10, 64); err == nil {
					modified = ms
				}
			}

			uploads = append(uploads, ingest.Upload{
				File: model.RawFile{
					Name:                fh.Filename,
					MimeType:            ct,
					SizeBytes:           fh.Size,
					LastModifiedEpochMs: modified,
				},
				Content: f,
			})
		}

		form := ingest.SubmissionForm{
			Title:       c.FormValue("title"),
			Category:    c.FormValue("category"),
			Description: c.FormValue("description"),
			AccessLevel: c.FormValue("accessLevel"),
			Tags:        c.FormValue("tags"),
			UploadedBy:  c.FormValue("uploadedBy"),
		}

		rec, rejected, err := svc.IngestManual(c.UserContext(), uploads, form)
		if err != nil {
			switch {
			case errors.Is(err, ingest.ErrTitleRequired):
				return writeError(c, fiber.StatusBadRequest, "TITLE_REQUIRED", "title is required")
			case errors.Is(err, ingest.ErrCategoryRequired):
				return writeError(c, fiber.StatusBadRequest, "CATEGORY_REQUIRED", "category is required")
			case errors.Is(err, ingest.ErrAccessLevelRequired):
				return writeError(c, fiber.StatusBadRequest, "ACCESS_LEVEL_REQUIRED", "access level is required")
			case errors.Is(err, ingest.ErrNoValidFiles):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error":    fiber.Map{"code": "NO_VALID_FILES", "message": "no files in the batch passed validation"},
					"rejected": rejected,
				})
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}

		return c.Status(fiber.StatusCreated).JSON(submitResponse{Document: rec, Rejected: rejected})
	}
}

// SyncConnector pulls documents from the named connector and upserts them.
func SyncConnector(svc ingest.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		records, err := svc.IngestFromConnector(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, ingest.ErrConnectorUnavailable) {
				return writeError(c, fiber.StatusBadGateway, "CONNECTOR_UNAVAILABLE", "connector pull failed")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(documentListResponse{Data: records, Total: len(records)})
	}
}
