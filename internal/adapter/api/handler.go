package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"mpasi-planner/internal/domain/entity"
	"mpasi-planner/internal/usecase"
)

// ModelLister is implemented by the local backend client; nil when no
// local server is configured.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

type MenuHandler struct {
	planner     *usecase.Planner
	localModels ModelLister
	geminiModel string
}

func NewMenuHandler(planner *usecase.Planner, localModels ModelLister, geminiModel string) *MenuHandler {
	return &MenuHandler{planner: planner, localModels: localModels, geminiModel: geminiModel}
}

// HandleGenerate runs the full pipeline and returns the decoded plan.
func (h *MenuHandler) HandleGenerate(c *fiber.Ctx) error {
	var req entity.PlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := h.planner.GenerateMenu(c.Context(), clientID(c), req)
	if err != nil {
		return writeFailure(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// HandlePromptPreview returns the assembled prompt without calling a
// backend. Inspection endpoint, not for production decisioning.
func (h *MenuHandler) HandlePromptPreview(c *fiber.Ctx) error {
	var req entity.PlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	preview, err := h.planner.DebugPrompt(c.Context(), req)
	if err != nil {
		return writeFailure(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(preview)
}

// HandleSearch runs one raw retrieval step against a single category.
// Debug surface for inspecting what the store returns before any prompt
// assembly.
func (h *MenuHandler) HandleSearch(c *fiber.Ctx) error {
	query := c.Query("q")
	category := c.Query("category", entity.BundleRules)
	limit := c.QueryInt("limit", usecase.DefaultRulesLimit)
	if limit < 1 {
		limit = usecase.DefaultRulesLimit
	}

	bundle, err := h.planner.Search(c.Context(), query, category, uint64(limit))
	if err != nil {
		return writeFailure(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"query":     bundle.Query,
		"category":  bundle.Label,
		"count":     len(bundle.Documents),
		"documents": bundle.Documents,
	})
}

// HandleModels lists the selectable backends and their models.
func (h *MenuHandler) HandleModels(c *fiber.Ctx) error {
	type modelInfo struct {
		ID      string `json:"id"`
		Backend string `json:"backend"`
	}
	models := []modelInfo{{ID: h.geminiModel, Backend: string(entity.BackendGemini)}}

	if h.localModels != nil {
		local, err := h.localModels.ListModels(c.Context())
		if err == nil {
			for _, id := range local {
				models = append(models, modelInfo{ID: id, Backend: string(entity.BackendLMStudio)})
			}
		}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"models": models})
}

// writeFailure maps classified pipeline failures to HTTP statuses.
func writeFailure(c *fiber.Ctx, err error) error {
	var genErr *entity.GenerationError
	var decErr *entity.DecodeError

	switch {
	case errors.Is(err, entity.ErrInvalidRequest), errors.Is(err, entity.ErrUnknownBackend):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, entity.ErrRateLimitExceeded):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &genErr):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   genErr.Error(),
			"backend": genErr.Backend,
			"model":   genErr.Model,
		})
	case errors.As(err, &decErr):
		// Keep a snippet of the raw reply so malformed output can be
		// diagnosed from the response alone.
		raw := decErr.Raw
		if len(raw) > 500 {
			raw = raw[:500] + "..."
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":        decErr.Error(),
			"decode_stage": decErr.Stage,
			"raw_snippet":  raw,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal planner error"})
	}
}

func clientID(c *fiber.Ctx) string {
	if id := c.Get("X-Client-ID"); id != "" {
		return id
	}
	return c.IP()
}
