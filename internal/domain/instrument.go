package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type InstrumentType string

const (
	InstrumentTypeISIN   InstrumentType = "ISIN"
	InstrumentTypeCUSIP  InstrumentType = "CUSIP"
	InstrumentTypeTicker InstrumentType = "TICKER"
)

// InstrumentTypes lists the supported identifier kinds in display order.
var InstrumentTypes = []InstrumentType{InstrumentTypeTicker, InstrumentTypeISIN, InstrumentTypeCUSIP}

func (t InstrumentType) IsValid() bool {
	switch t {
	case InstrumentTypeISIN, InstrumentTypeCUSIP, InstrumentTypeTicker:
		return true
	}
	return false
}

// Instrument is a single catalog entry. ID and AddedAt are assigned once at
// creation and never change afterwards.
type Instrument struct {
	ID          string         `json:"id"`
	Type        InstrumentType `json:"type"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	AddedAt     time.Time      `json:"addedAt"`
}

// InstrumentForm carries the user-editable fields of an Instrument.
type InstrumentForm struct {
	Type        InstrumentType `json:"type" validate:"notblank,instrument_type"`
	Code        string         `json:"code" validate:"notblank"`
	Name        string         `json:"name" validate:"notblank"`
	Description string         `json:"description,omitempty"`
}

// Normalize trims the free-text fields and uppercases the code.
func (f InstrumentForm) Normalize() InstrumentForm {
	return InstrumentForm{
		Type:        InstrumentType(strings.TrimSpace(string(f.Type))),
		Code:        strings.ToUpper(strings.TrimSpace(f.Code)),
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
	}
}

func NewInstrument(form InstrumentForm) Instrument {
	form = form.Normalize()
	return Instrument{
		ID:          uuid.New().String(),
		Type:        form.Type,
		Code:        form.Code,
		Name:        form.Name,
		Description: form.Description,
		AddedAt:     time.Now().UTC(),
	}
}

// Apply replaces the editable fields, keeping ID and AddedAt.
func (i Instrument) Apply(form InstrumentForm) Instrument {
	form = form.Normalize()
	i.Type = form.Type
	i.Code = form.Code
	i.Name = form.Name
	i.Description = form.Description
	return i
}

// Form returns the editable part of the instrument.
func (i Instrument) Form() InstrumentForm {
	return InstrumentForm{
		Type:        i.Type,
		Code:        i.Code,
		Name:        i.Name,
		Description: i.Description,
	}
}

// SameIdentity reports whether both records identify the same (type, code)
// pair. Codes compare case-insensitively.
func (i Instrument) SameIdentity(t InstrumentType, code string) bool {
	return i.Type == t && strings.EqualFold(i.Code, code)
}

// FilterByType returns the instruments of the given type, preserving order.
func FilterByType(instruments []Instrument, t InstrumentType) []Instrument {
	filtered := make([]Instrument, 0, len(instruments))
	for _, inst := range instruments {
		if inst.Type == t {
			filtered = append(filtered, inst)
		}
	}
	return filtered
}
