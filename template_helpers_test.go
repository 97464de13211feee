package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacationRentalWebsite/internal/models"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "$200", Money(200))
	assert.Equal(t, "$120.50", Money(120.5))
	assert.Equal(t, "$0", Money(0))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "-", FormatDate(time.Time{}))
	assert.Equal(t, "Dec 1, 2026", FormatDate(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)))
}

func TestHumanizeAndStatusClass(t *testing.T) {
	assert.Equal(t, "Beach house", Humanize(models.PropertyBeachHouse))
	assert.Equal(t, "", Humanize(""))
	assert.Equal(t, "badge badge-success", StatusClass(models.BookingConfirmed))
	assert.Equal(t, "badge badge-warning", StatusClass(models.EnquiryNew))
	assert.Equal(t, "badge badge-danger", StatusClass(models.PaymentFailed))
	assert.Equal(t, "badge", StatusClass("unknown"))
}

func TestTruncateCountsRunes(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "héll...", Truncate("héllo world", 4))
}

func TestPageNumbers(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, PageNumbers(3))
	assert.Empty(t, PageNumbers(0))
}

func TestTemplateCacheParsesEveryPage(t *testing.T) {
	cache := NewTemplateCache("templates")
	pages := []string{
		"home", "properties", "property", "login", "register", "profile", "bookings",
		"admin_dashboard", "admin_properties", "admin_property_form", "admin_bookings",
		"admin_enquiries", "loading", "not_found",
	}
	for _, name := range pages {
		tmpl, err := cache.GetTemplate(name)
		require.NoError(t, err, name)
		assert.NotNil(t, tmpl.Lookup("base.html"), name)

		again, err := cache.GetTemplate(name)
		require.NoError(t, err)
		assert.Same(t, tmpl, again, name)
	}

	_, err := cache.GetTemplate("missing")
	assert.Error(t, err)
}
