package service

import (
	"context"
	"fmt"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
)

// AddressView is a read-only copy of the address book.
type AddressView struct {
	Addresses  []domain.Address `json:"addresses"`
	SelectedID string           `json:"selectedId,omitempty"`
}

func (s *Session) Addresses() (AddressView, error) {
	if err := s.lock(); err != nil {
		return AddressView{}, err
	}
	defer s.mu.Unlock()
	return s.addressView(), nil
}

func (s *Session) addressView() AddressView {
	book := s.addresses.Clone()
	return AddressView{Addresses: book.Addresses, SelectedID: book.SelectedID}
}

// SelectedAddress is the address checkout will ship to.
func (s *Session) SelectedAddress() (domain.Address, bool, error) {
	if err := s.lock(); err != nil {
		return domain.Address{}, false, err
	}
	defer s.mu.Unlock()
	a, ok := s.addresses.Selected()
	return a, ok, nil
}

// mutateAddresses applies fn to a copy of the book and swaps it in only after
// the copy has been saved.
func (s *Session) mutateAddresses(ctx context.Context, fn func(b *domain.AddressBook) error) error {
	next := s.addresses.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := saveDocument(ctx, s.deps.Store, repository.CollectionAddresses, s.userID, next); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.addresses = next
	return nil
}

func (s *Session) AddAddress(ctx context.Context, in domain.AddressInput) (domain.Address, error) {
	if err := s.lock(); err != nil {
		return domain.Address{}, err
	}
	defer s.mu.Unlock()

	var added domain.Address
	err := s.mutateAddresses(ctx, func(b *domain.AddressBook) error {
		var err error
		added, err = b.Add(in)
		return err
	})
	return added, err
}

func (s *Session) UpdateAddress(ctx context.Context, id string, patch domain.AddressPatch) (domain.Address, error) {
	if err := s.lock(); err != nil {
		return domain.Address{}, err
	}
	defer s.mu.Unlock()

	var updated domain.Address
	err := s.mutateAddresses(ctx, func(b *domain.AddressBook) error {
		var err error
		updated, err = b.Update(id, patch)
		return err
	})
	return updated, err
}

func (s *Session) DeleteAddress(ctx context.Context, id string) (AddressView, error) {
	if err := s.lock(); err != nil {
		return AddressView{}, err
	}
	defer s.mu.Unlock()

	if err := s.mutateAddresses(ctx, func(b *domain.AddressBook) error { return b.Delete(id) }); err != nil {
		return AddressView{}, err
	}
	return s.addressView(), nil
}

func (s *Session) SetDefaultAddress(ctx context.Context, id string) (AddressView, error) {
	if err := s.lock(); err != nil {
		return AddressView{}, err
	}
	defer s.mu.Unlock()

	if err := s.mutateAddresses(ctx, func(b *domain.AddressBook) error { return b.SetDefault(id) }); err != nil {
		return AddressView{}, err
	}
	return s.addressView(), nil
}

func (s *Session) SelectAddress(ctx context.Context, id string) (AddressView, error) {
	if err := s.lock(); err != nil {
		return AddressView{}, err
	}
	defer s.mu.Unlock()

	if err := s.mutateAddresses(ctx, func(b *domain.AddressBook) error { return b.Select(id) }); err != nil {
		return AddressView{}, err
	}
	return s.addressView(), nil
}
