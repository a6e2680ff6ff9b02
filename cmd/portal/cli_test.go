package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	meminsuranceapi "github.com/iskrendev/insurance-portal/internal/adapters/memory/insuranceapi"
	"github.com/iskrendev/insurance-portal/internal/app/stats"
	"github.com/iskrendev/insurance-portal/internal/domain"
)

func TestWriteRecord(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := writeRecord(&out, domain.Record{
		ID:      "7",
		Type:    domain.TypeVehicle,
		Holder:  domain.Holder{FirstName: "Anna", FamilyName: "Muster"},
		Details: domain.VehicleDetails{Make: "VW", Year: 2019},
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Kfz-Versicherung")
	assert.Contains(t, out.String(), "VW")
	assert.Contains(t, out.String(), "2019")
	assert.NotContains(t, out.String(), "Baujahr")
}

func TestWriteSummary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := meminsuranceapi.NewAPI(nil)
	_, err := api.Create(ctx, domain.Record{
		Type:     domain.TypeLife,
		Holder:   domain.Holder{FirstName: "Anna", FamilyName: "Muster"},
		Contract: domain.Contract{DurationMonths: 12, PaymentPerMonth: 100},
		Details:  domain.LifeDetails{},
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writeSummary(ctx, &out, stats.NewService(api, nil)))
	assert.Contains(t, out.String(), "1.200,00 €")
	assert.Contains(t, out.String(), "Lebensversicherungen")
}

func TestRootCmd_ShowRejectsUnknownType(t *testing.T) {
	cmd := rootCmd()
	cmd.SetArgs([]string{"show", "boat", "1", "--api", "http://127.0.0.1:1"})
	cmd.SetOut(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boat")
}

func TestRootCmd_RejectsRelativeAPI(t *testing.T) {
	cmd := rootCmd()
	cmd.SetArgs([]string{"list", "--api", "not-a-url"})
	cmd.SetOut(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
