package triage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetclinic/clinic/internal/platform/apperror"
)

func TestMeasure_UnmarshalJSON(t *testing.T) {
	var v Vitals
	require.NoError(t, json.Unmarshal([]byte(`{"weight":4.2,"temperature":" 38.1 "}`), &v))
	w, ok := v.Weight.Positive()
	assert.True(t, ok)
	assert.InDelta(t, 4.2, w, 1e-9)
	temp, ok := v.Temperature.Positive()
	assert.True(t, ok)
	assert.InDelta(t, 38.1, temp, 1e-9)

	require.NoError(t, json.Unmarshal([]byte(`{"weight":null}`), &v))
	_, ok = v.Weight.Positive()
	assert.False(t, ok)
}

func TestMeasure_Positive(t *testing.T) {
	for _, bad := range []Measure{"", "abc", "0", "-1.5", "NaN", "nan", "Inf", "+Inf", "-Inf", "1e400"} {
		_, ok := bad.Positive()
		assert.False(t, ok, "%q", bad)
	}
}

func TestVitals_Validate_RequiresWeightAndTemperature(t *testing.T) {
	cases := []Vitals{
		{},
		{Weight: "4.2"},
		{Temperature: "38.1"},
		{Weight: "heavy", Temperature: "38.1"},
		{Weight: "4.2", Temperature: "0"},
	}
	for _, in := range cases {
		_, err := in.Validate()
		var fe *apperror.FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "weight and temperature are required", fe.Message)
	}
}

func TestVitals_Validate_Defaults(t *testing.T) {
	rec, err := Vitals{Weight: "4.2", Temperature: "38.1", ChiefComplaint: "  scratching ear "}.Validate()
	require.NoError(t, err)
	assert.Equal(t, PriorityNonUrgent, rec.Priority)
	assert.Nil(t, rec.MucousMembrane)
	assert.Equal(t, "scratching ear", rec.ChiefComplaint)
}

func TestVitals_Validate_Enums(t *testing.T) {
	rec, err := Vitals{Weight: "4.2", Temperature: "38.1", MucousMembrane: "Pale", Priority: "Critical"}.Validate()
	require.NoError(t, err)
	require.NotNil(t, rec.MucousMembrane)
	assert.Equal(t, MembranePale, *rec.MucousMembrane)
	assert.Equal(t, PriorityCritical, rec.Priority)

	_, err = Vitals{Weight: "4.2", Temperature: "38.1", MucousMembrane: "purple"}.Validate()
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = Vitals{Weight: "4.2", Temperature: "38.1", Priority: "urgent-ish"}.Validate()
	assert.ErrorIs(t, err, apperror.ErrValidation)

	hr := 0
	_, err = Vitals{Weight: "4.2", Temperature: "38.1", HeartRate: &hr}.Validate()
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestVitals_Validate_NonFinite(t *testing.T) {
	_, err := Vitals{Weight: "NaN", Temperature: "Inf"}.Validate()
	var fe *apperror.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "vitals", fe.Field)
}

func TestVitals_Validate_UpperBounds(t *testing.T) {
	cases := map[string]Vitals{
		"weight":      {Weight: "100000", Temperature: "38.1"},
		"temperature": {Weight: "4.2", Temperature: "1000"},
	}
	for field, in := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := in.Validate()
			var fe *apperror.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, field, fe.Field)
		})
	}

	hr := MaxRate + 1
	_, err := Vitals{Weight: "4.2", Temperature: "38.1", HeartRate: &hr}.Validate()
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = Vitals{Weight: "99999.99", Temperature: "999.9"}.Validate()
	assert.NoError(t, err)
}
