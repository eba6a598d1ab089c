package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"furniture_back_end/internal/models"
	"furniture_back_end/internal/services"
)

var productMessages = map[string]string{
	"pname":       "Product name is required",
	"price":       "Price must be a positive number",
	"offer":       "Offer must be between 0 and 100",
	"stock_count": "Stock count cannot be negative",
	"rating":      "Rating must be between 0 and 5",
	"quantity":    "Quantity is required",
	"type":        "Type must be restock or adjustment",
}

type productRequest struct {
	Name        string   `json:"pname" binding:"required"`
	Description string   `json:"pdesc"`
	Price       *float64 `json:"price" binding:"required,min=0"`
	Offer       float64  `json:"offer" binding:"min=0,max=100"`
	StockCount  int      `json:"stock_count" binding:"min=0"`
	Brand       string   `json:"brand"`
	Material    string   `json:"material"`
	Category    string   `json:"category"`
	Rating      float64  `json:"rating" binding:"min=0,max=5"`
	ImageURLs   []string `json:"image_urls"`
}

func (r productRequest) product() models.Product {
	return models.Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       *r.Price,
		Offer:       r.Offer,
		StockCount:  r.StockCount,
		Brand:       r.Brand,
		Material:    r.Material,
		Category:    r.Category,
		Rating:      r.Rating,
		ImageURLs:   r.ImageURLs,
	}
}

type stockRequest struct {
	Quantity *int   `json:"quantity" binding:"required"`
	Type     string `json:"type" binding:"required,oneof=restock adjustment"`
	Reason   string `json:"reason"`
}

// GET /api/products
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.Products.List(c.Request.Context())
	if err != nil {
		fail(c, err, "Something went wrong while fetching products")
		return
	}
	out := make([]models.ProductSummary, 0, len(products))
	for _, p := range products {
		out = append(out, p.Summary())
	}
	respond(c, http.StatusOK, "Products fetched successfully", gin.H{"products": out})
}

// GET /api/products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.Products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Something went wrong while fetching product")
		return
	}
	respond(c, http.StatusOK, "Product fetched successfully", gin.H{"product": p.Summary()})
}

// POST /api/products (admin)
func (h *Handler) CreateProduct(c *gin.Context) {
	var req productRequest
	if !bindJSON(c, &req, productMessages) {
		return
	}
	p, err := h.Products.Create(c.Request.Context(), req.product())
	if err != nil {
		fail(c, err, "Something went wrong while creating product")
		return
	}
	respond(c, http.StatusCreated, "Product created successfully", gin.H{"product": p.Summary()})
}

// PUT /api/products/:id (admin) : stock_count est ignoré, voir /stock
func (h *Handler) UpdateProduct(c *gin.Context) {
	var req productRequest
	if !bindJSON(c, &req, productMessages) {
		return
	}
	p, err := h.Products.Update(c.Request.Context(), c.Param("id"), req.product())
	if err != nil {
		fail(c, err, "Something went wrong while updating product")
		return
	}
	respond(c, http.StatusOK, "Product updated successfully", gin.H{"product": p.Summary()})
}

// POST /api/products/:id/stock (admin)
func (h *Handler) UpdateStock(c *gin.Context) {
	var req stockRequest
	if !bindJSON(c, &req, productMessages) {
		return
	}
	mv, err := h.Products.AdjustStock(c.Request.Context(), c.Param("id"), services.StockAdjustment{
		Type:     models.MovementType(req.Type),
		Quantity: *req.Quantity,
		Reason:   req.Reason,
		UserID:   userID(c),
	})
	if err != nil {
		fail(c, err, "Something went wrong while updating stock")
		return
	}
	respond(c, http.StatusOK, "Stock updated successfully", gin.H{
		"movement":   mv,
		"prev_stock": mv.PrevStock,
		"new_stock":  mv.NewStock,
	})
}

// GET /api/products/:id/movements?limit=50 (admin)
func (h *Handler) GetStockMovements(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	moves, err := h.Products.Movements(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		fail(c, err, "Something went wrong while fetching movements")
		return
	}
	respond(c, http.StatusOK, "Stock movements fetched successfully", gin.H{"movements": moves})
}
