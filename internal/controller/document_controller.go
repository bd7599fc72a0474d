package controller

import (
	"doc-intelligence-be/internal/dto"
	"doc-intelligence-be/internal/pkg/serverutils"
	"doc-intelligence-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	SearchPost(ctx *fiber.Ctx) error
	SearchGet(ctx *fiber.Ctx) error
	CompareSearch(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
	searchService   service.ISearchService
}

func NewDocumentController(documentService service.IDocumentService, searchService service.ISearchService) IDocumentController {
	return &documentController{
		documentService: documentService,
		searchService:   searchService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/documents/v1")
	h.Use(serverutils.JwtMiddleware)
	// Search routes go first so "search" is not captured by ":id".
	h.Post("search", c.SearchPost)
	h.Get("search", c.SearchGet)
	h.Get("search/compare", c.CompareSearch)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)
}

func (c *documentController) SearchPost(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.Search(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search documents", res))
}

// searchQueryParam reads the q parameter; query is accepted as an alias.
func searchQueryParam(ctx *fiber.Ctx) string {
	if q := ctx.Query("q"); q != "" {
		return q
	}
	return ctx.Query("query")
}

func (c *documentController) SearchGet(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	req := dto.SearchRequest{
		Query:      searchQueryParam(ctx),
		Limit:      ctx.QueryInt("limit", 0),
		SearchType: ctx.Query("search_type", "hybrid"),
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.Search(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search documents", res))
}

func (c *documentController) CompareSearch(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	query := searchQueryParam(ctx)
	limit := ctx.QueryInt("limit", 0)

	res, err := c.searchService.Compare(ctx.Context(), userId, query, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success compare search strategies", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.ListDocumentsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.List(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid document id")
	}

	res, err := c.documentService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show document", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid document id")
	}

	res, err := c.documentService.Delete(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete document", res))
}
