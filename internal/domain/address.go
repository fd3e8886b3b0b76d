package domain

import (
	"strings"

	"github.com/google/uuid"
)

// NewAddressID generates ids for new addresses.
var NewAddressID = uuid.NewString

type Address struct {
	ID           string `json:"id"`
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	IsDefault    bool   `json:"isDefault"`
}

// AddressInput is the form submitted when creating an address.
type AddressInput struct {
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	IsDefault    bool   `json:"isDefault"`
}

// AddressPatch carries the fields to change; nil fields are left alone.
type AddressPatch struct {
	FullName     *string `json:"fullName,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	AddressLine1 *string `json:"addressLine1,omitempty"`
	AddressLine2 *string `json:"addressLine2,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	Pincode      *string `json:"pincode,omitempty"`
	IsDefault    *bool   `json:"isDefault,omitempty"`
}

func (in AddressInput) Validate() error {
	return validateAddress(Address{
		FullName:     in.FullName,
		Phone:        in.Phone,
		AddressLine1: in.AddressLine1,
		City:         in.City,
		State:        in.State,
		Pincode:      in.Pincode,
	})
}

func validateAddress(a Address) error {
	v := &ValidationError{}
	required := []struct {
		field string
		value string
	}{
		{"fullName", a.FullName},
		{"phone", a.Phone},
		{"addressLine1", a.AddressLine1},
		{"city", a.City},
		{"state", a.State},
		{"pincode", a.Pincode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			v.add(r.field, "is required")
		}
	}
	if a.Phone != "" && !isDigits(a.Phone, 10) {
		v.add("phone", "must be exactly 10 digits")
	}
	if a.Pincode != "" && !isDigits(a.Pincode, 6) {
		v.add("pincode", "must be exactly 6 digits")
	}
	return v.orNil()
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (p AddressPatch) apply(a Address) Address {
	if p.FullName != nil {
		a.FullName = *p.FullName
	}
	if p.Phone != nil {
		a.Phone = *p.Phone
	}
	if p.AddressLine1 != nil {
		a.AddressLine1 = *p.AddressLine1
	}
	if p.AddressLine2 != nil {
		a.AddressLine2 = *p.AddressLine2
	}
	if p.City != nil {
		a.City = *p.City
	}
	if p.State != nil {
		a.State = *p.State
	}
	if p.Pincode != nil {
		a.Pincode = *p.Pincode
	}
	return a
}

// AddressBook holds one identity's shipping addresses. A non-empty book has
// exactly one default address. Every mutator builds the new address list on
// a copy and swaps it in, so no reader sees two defaults or none.
type AddressBook struct {
	Addresses  []Address `json:"addresses"`
	SelectedID string    `json:"selectedId,omitempty"`
}

// NewAddressBook repairs persisted state: it elects a default when none or
// several are flagged and points the selection at the default when the stored
// selection is gone.
func NewAddressBook(addresses []Address, selectedID string) *AddressBook {
	b := &AddressBook{Addresses: cloneAddresses(addresses), SelectedID: selectedID}
	if len(b.Addresses) == 0 {
		b.SelectedID = ""
		return b
	}

	defaultID := b.Addresses[0].ID
	for _, a := range b.Addresses {
		if a.IsDefault {
			defaultID = a.ID
			break
		}
	}
	setDefault(b.Addresses, defaultID)

	if b.index(b.SelectedID) < 0 {
		b.SelectedID = defaultID
	}
	return b
}

// setDefault is the single place that flips default flags.
func setDefault(addresses []Address, id string) {
	for i := range addresses {
		addresses[i].IsDefault = addresses[i].ID == id
	}
}

func cloneAddresses(addresses []Address) []Address {
	if len(addresses) == 0 {
		return nil
	}
	out := make([]Address, len(addresses))
	copy(out, addresses)
	return out
}

func (b *AddressBook) index(id string) int {
	if id == "" {
		return -1
	}
	for i, a := range b.Addresses {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Add validates input and appends a new address. The first address of a book
// is always the default; a new default also becomes the selection.
func (b *AddressBook) Add(in AddressInput) (Address, error) {
	if err := in.Validate(); err != nil {
		return Address{}, err
	}

	addr := Address{
		ID:           NewAddressID(),
		FullName:     in.FullName,
		Phone:        in.Phone,
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		City:         in.City,
		State:        in.State,
		Pincode:      in.Pincode,
	}
	makeDefault := len(b.Addresses) == 0 || in.IsDefault

	next := append(cloneAddresses(b.Addresses), addr)
	selected := b.SelectedID
	if makeDefault {
		setDefault(next, addr.ID)
		selected = addr.ID
	}

	b.Addresses, b.SelectedID = next, selected
	addr.IsDefault = makeDefault
	return addr, nil
}

// Update applies patch to the address. Clearing the flag on the current
// default is ignored: the book would be left without one.
func (b *AddressBook) Update(id string, patch AddressPatch) (Address, error) {
	i := b.index(id)
	if i < 0 {
		return Address{}, ErrAddressNotFound
	}

	next := cloneAddresses(b.Addresses)
	updated := patch.apply(next[i])
	if err := validateAddress(updated); err != nil {
		return Address{}, err
	}
	next[i] = updated

	selected := b.SelectedID
	if patch.IsDefault != nil && *patch.IsDefault {
		setDefault(next, id)
		selected = id
	}

	b.Addresses, b.SelectedID = next, selected
	return next[i], nil
}

// Delete removes the address. When it was the default or the selection, the
// first remaining address takes over that role.
func (b *AddressBook) Delete(id string) error {
	i := b.index(id)
	if i < 0 {
		return ErrAddressNotFound
	}

	removed := b.Addresses[i]
	next := make([]Address, 0, len(b.Addresses)-1)
	next = append(next, b.Addresses[:i]...)
	next = append(next, b.Addresses[i+1:]...)

	if len(next) == 0 {
		b.Addresses, b.SelectedID = nil, ""
		return nil
	}

	selected := b.SelectedID
	if removed.IsDefault {
		setDefault(next, next[0].ID)
	}
	if removed.IsDefault || removed.ID == b.SelectedID {
		selected = next[0].ID
	}

	b.Addresses, b.SelectedID = next, selected
	return nil
}

// SetDefault makes id the only default and selects it.
func (b *AddressBook) SetDefault(id string) error {
	if b.index(id) < 0 {
		return ErrAddressNotFound
	}
	next := cloneAddresses(b.Addresses)
	setDefault(next, id)
	b.Addresses, b.SelectedID = next, id
	return nil
}

// Select picks the checkout address without touching default flags.
func (b *AddressBook) Select(id string) error {
	if b.index(id) < 0 {
		return ErrAddressNotFound
	}
	b.SelectedID = id
	return nil
}

func (b *AddressBook) Selected() (Address, bool) {
	i := b.index(b.SelectedID)
	if i < 0 {
		return Address{}, false
	}
	return b.Addresses[i], true
}

func (b *AddressBook) Default() (Address, bool) {
	for _, a := range b.Addresses {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}

func (b *AddressBook) Get(id string) (Address, bool) {
	i := b.index(id)
	if i < 0 {
		return Address{}, false
	}
	return b.Addresses[i], true
}

func (b *AddressBook) Len() int {
	return len(b.Addresses)
}

func (b *AddressBook) Clone() *AddressBook {
	return &AddressBook{Addresses: cloneAddresses(b.Addresses), SelectedID: b.SelectedID}
}
