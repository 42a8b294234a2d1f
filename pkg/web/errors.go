package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
	"github.com/pipeboard/pipeboard/pkg/editor"
	"github.com/pipeboard/pipeboard/pkg/persistence"
	"github.com/pipeboard/pipeboard/pkg/yamlcodec"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func conflict(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType("history_exhausted").
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleEditorError maps edit failures to responses: connection verdicts are
// unprocessable-but-well-formed, unknown graph elements are 404s.
func handleEditorError(c fiber.Ctx, err error) error {
	switch {
	case editor.IsConnectionRejected(err):
		problem := problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType("connection_rejected").
			WithDetail(err.Error())

		return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)

	case isEditorNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("not_found").
			WithDetail(err.Error())

		return c.Status(fiber.StatusNotFound).JSON(problem)

	default:
		return badRequest(c, err.Error())
	}
}

func isEditorNotFound(err error) bool {
	return errors.Is(err, editor.ErrNodeNotFound) || errors.Is(err, editor.ErrEdgeNotFound)
}

// handleStorageError maps persistence failures to responses.
func handleStorageError(c fiber.Ctx, err error) error {
	if persistence.IsDocumentNotFound(err) {
		return notFound(c, "workflow not found")
	}

	return internalError(c, err)
}

// handleParseError reports a failed import; the caller guarantees no state
// was touched.
func handleParseError(c fiber.Ctx, err error) error {
	if yamlcodec.IsParseError(err) {
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("parse_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	return internalError(c, err)
}
