package triage

import (
	"strings"

	"github.com/vetclinic/clinic/internal/platform/apperror"
)

// Validate checks vitals and builds the record they describe. Nothing is
// persisted here.
func (v Vitals) Validate() (*Record, error) {
	weight, okW := v.Weight.Positive()
	temp, okT := v.Temperature.Positive()
	if !okW || !okT {
		return nil, apperror.Validation("vitals", "weight and temperature are required")
	}
	if weight > MaxWeightKg {
		return nil, apperror.Validation("weight", "weight must be at most %.2f kg", MaxWeightKg)
	}
	if temp > MaxTemperatureC {
		return nil, apperror.Validation("temperature", "temperature must be at most %.1f °C", MaxTemperatureC)
	}
	if v.HeartRate != nil && (*v.HeartRate <= 0 || *v.HeartRate > MaxRate) {
		return nil, apperror.Validation("heart_rate", "heart rate must be between 1 and %d", MaxRate)
	}
	if v.RespiratoryRate != nil && (*v.RespiratoryRate <= 0 || *v.RespiratoryRate > MaxRate) {
		return nil, apperror.Validation("respiratory_rate", "respiratory rate must be between 1 and %d", MaxRate)
	}

	r := &Record{
		WeightKg:        weight,
		TemperatureC:    temp,
		HeartRate:       v.HeartRate,
		RespiratoryRate: v.RespiratoryRate,
		Priority:        PriorityNonUrgent,
		ChiefComplaint:  strings.TrimSpace(v.ChiefComplaint),
	}
	if s := strings.TrimSpace(v.MucousMembrane); s != "" {
		mm := MucousMembrane(strings.ToLower(s))
		if !validMembranes[mm] {
			return nil, apperror.Validation("mucous_membrane", "invalid mucous membrane %q", s)
		}
		r.MucousMembrane = &mm
	}
	if s := strings.TrimSpace(v.Priority); s != "" {
		p := Priority(s)
		if !validPriorities[p] {
			return nil, apperror.Validation("priority", "priority must be Non-Urgent, Urgent or Critical")
		}
		r.Priority = p
	}
	return r, nil
}
