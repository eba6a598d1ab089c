package services

import (
	"context"
	"errors"

	"furniture_back_end/internal/apperr"
	"furniture_back_end/internal/models"
	"furniture_back_end/internal/store"
)

const msgAddressExists = "Address already exists. Use PUT method to update."

// AddressService gère l'unique adresse de livraison d'un utilisateur.
type AddressService struct {
	addresses store.AddressStore
}

func NewAddressService(s store.Store) *AddressService {
	return &AddressService{addresses: s.Addresses}
}

func (s *AddressService) Create(ctx context.Context, userID string, a models.DeliveryAddress) (*models.DeliveryAddress, error) {
	a.ID = ""
	a.UserID = userID
	err := s.addresses.CreateAddress(ctx, &a)
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil, apperr.Validation(msgAddressExists)
	}
	if err != nil {
		return nil, apperr.Internal("Something went wrong while creating address", err)
	}
	return &a, nil
}

func (s *AddressService) Get(ctx context.Context, userID string) (*models.DeliveryAddress, error) {
	a, err := s.addresses.GetAddressByUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "Address not found", "Something went wrong while fetching address")
	}
	return a, nil
}

// Update modifie l'adresse sur place : les commandes qui la référencent
// verront les nouvelles valeurs.
func (s *AddressService) Update(ctx context.Context, userID string, patch models.AddressPatch) (*models.DeliveryAddress, error) {
	a, err := s.addresses.GetAddressByUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "Address not found", "Something went wrong while updating address")
	}
	a.Apply(patch)
	if err := s.addresses.UpdateAddress(ctx, a); err != nil {
		return nil, storeErr(err, "Address not found", "Something went wrong while updating address")
	}
	return a, nil
}

func (s *AddressService) Delete(ctx context.Context, userID string) error {
	err := s.addresses.DeleteAddressByUser(ctx, userID)
	return storeErr(err, "Address not found", "Something went wrong while deleting address")
}
