package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"furniture_back_end/internal/models"
)

var addressMessages = map[string]string{
	"mob1":       "Mobile number 1 must be 10 digits",
	"mob2":       "Mobile number 2 must be 10 digits",
	"postalcode": "Postal code must be 6 digits",
	"address":    "Address is required",
	"area":       "Area is required",
	"landmark":   "Landmark is required",
	"city":       "City is required",
	"state":      "State is required",
}

var addressUpdateMessages = map[string]string{
	"mob1":       "Mobile number 1 must be 10 digits",
	"mob2":       "Mobile number 2 must be 10 digits",
	"postalcode": "Postal code must be 6 digits",
	"address":    "Address cannot be empty",
	"area":       "Area cannot be empty",
	"landmark":   "Landmark cannot be empty",
	"city":       "City cannot be empty",
	"state":      "State cannot be empty",
}

type createAddressRequest struct {
	Mob1       string `json:"mob1" binding:"required,numeric,len=10"`
	Mob2       string `json:"mob2" binding:"omitempty,numeric,len=10"`
	PostalCode string `json:"postalcode" binding:"required,numeric,len=6"`
	Address    string `json:"address" binding:"required"`
	Area       string `json:"area" binding:"required"`
	Landmark   string `json:"landmark" binding:"required"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required"`
}

type updateAddressRequest struct {
	Mob1       *string `json:"mob1" binding:"omitnil,numeric,len=10"`
	Mob2       *string `json:"mob2" binding:"omitnil,numeric,len=10"`
	PostalCode *string `json:"postalcode" binding:"omitnil,numeric,len=6"`
	Address    *string `json:"address" binding:"omitnil,min=1"`
	Area       *string `json:"area" binding:"omitnil,min=1"`
	Landmark   *string `json:"landmark" binding:"omitnil,min=1"`
	City       *string `json:"city" binding:"omitnil,min=1"`
	State      *string `json:"state" binding:"omitnil,min=1"`
}

// POST /api/address
func (h *Handler) CreateAddress(c *gin.Context) {
	var req createAddressRequest
	if !bindJSON(c, &req, addressMessages) {
		return
	}
	addr, err := h.Address.Create(c.Request.Context(), userID(c), models.DeliveryAddress{
		Mob1:       req.Mob1,
		Mob2:       req.Mob2,
		PostalCode: req.PostalCode,
		Address:    req.Address,
		Area:       req.Area,
		Landmark:   req.Landmark,
		City:       req.City,
		State:      req.State,
	})
	if err != nil {
		fail(c, err, "Something went wrong while creating address")
		return
	}
	respond(c, http.StatusCreated, "Address created successfully", gin.H{"address": addr})
}

// GET /api/address
func (h *Handler) GetAddress(c *gin.Context) {
	addr, err := h.Address.Get(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err, "Something went wrong while fetching address")
		return
	}
	respond(c, http.StatusOK, "Address fetched successfully", gin.H{"address": addr})
}

// PUT /api/address
func (h *Handler) UpdateAddress(c *gin.Context) {
	var req updateAddressRequest
	if !bindJSON(c, &req, addressUpdateMessages) {
		return
	}
	addr, err := h.Address.Update(c.Request.Context(), userID(c), models.AddressPatch{
		Mob1:       req.Mob1,
		Mob2:       req.Mob2,
		PostalCode: req.PostalCode,
		Address:    req.Address,
		Area:       req.Area,
		Landmark:   req.Landmark,
		City:       req.City,
		State:      req.State,
	})
	if err != nil {
		fail(c, err, "Something went wrong while updating address")
		return
	}
	respond(c, http.StatusOK, "Address updated successfully", gin.H{"address": addr})
}

// DELETE /api/address
func (h *Handler) DeleteAddress(c *gin.Context) {
	if err := h.Address.Delete(c.Request.Context(), userID(c)); err != nil {
		fail(c, err, "Something went wrong while deleting address")
		return
	}
	respond(c, http.StatusOK, "Address deleted successfully", nil)
}
