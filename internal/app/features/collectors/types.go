// internal/app/features/collectors/types.go
package collectors

import (
	"encoding/json"
	"errors"

	"github.com/dalemusser/greenlink/internal/app/system/normalize"
)

// wardList accepts either "1, 2, 5" or [1, 2, 5]. The result is sorted
// without duplicates.
type wardList []int

func (w *wardList) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		ws, err := normalize.Wards(s)
		if err != nil {
			return err
		}
		*w = ws
		return nil
	}
	var ns []int
	if err := json.Unmarshal(b, &ns); err != nil {
		return errors.New(`wards must be a list of numbers or a string like "1, 2"`)
	}
	*w = normalize.Ints(ns)
	return nil
}

type createRequest struct {
	Name     string   `json:"name" validate:"required,max=200" label:"Name"`
	Phone    string   `json:"phone" validate:"required,phone" label:"Phone"`
	Email    string   `json:"email" validate:"required,email,max=254" label:"Email"`
	Password string   `json:"password" validate:"required,min=8,max=72" label:"Password"`
	Wards    wardList `json:"wards" validate:"required,min=1,dive,ward" label:"Wards"`
}

type editRequest struct {
	Name   *string   `json:"name" validate:"omitempty,max=200" label:"Name"`
	Phone  *string   `json:"phone" validate:"omitempty,phone" label:"Phone"`
	Email  *string   `json:"email" validate:"omitempty,email,max=254" label:"Email"`
	Wards  *wardList `json:"wards" validate:"omitempty,min=1,dive,ward" label:"Wards"`
	Status *string   `json:"status" validate:"omitempty,oneof=active inactive" label:"Status"`
}
