package order

import (
	"errors"
	"strings"
	"testing"

	"github.com/oranba/product-catalog/internal/catalog"
)

func TestValidateTransition_AllowedPairs(t *testing.T) {
	allowed := []struct {
		from, to catalog.OrderStatus
	}{
		{catalog.StatusCreated, catalog.StatusPaid},
		{catalog.StatusCreated, catalog.StatusCancelled},
		{catalog.StatusPaid, catalog.StatusShipped},
		{catalog.StatusPaid, catalog.StatusCancelled},
		{catalog.StatusShipped, catalog.StatusDelivered},
		{catalog.StatusShipped, catalog.StatusCancelled},
	}
	for _, tt := range allowed {
		if err := ValidateTransition(tt.from, tt.to); err != nil {
			t.Errorf("ValidateTransition(%s, %s) = %v, want nil", tt.from, tt.to, err)
		}
	}
}

func TestValidateTransition_RejectsEverythingElse(t *testing.T) {
	allowed := map[[2]catalog.OrderStatus]bool{
		{catalog.StatusCreated, catalog.StatusPaid}:      true,
		{catalog.StatusCreated, catalog.StatusCancelled}: true,
		{catalog.StatusPaid, catalog.StatusShipped}:      true,
		{catalog.StatusPaid, catalog.StatusCancelled}:    true,
		{catalog.StatusShipped, catalog.StatusDelivered}: true,
		{catalog.StatusShipped, catalog.StatusCancelled}: true,
	}

	// Exhaustively check the complement of the table, identity pairs
	// included.
	for _, from := range catalog.OrderStatuses {
		for _, to := range catalog.OrderStatuses {
			if allowed[[2]catalog.OrderStatus{from, to}] {
				continue
			}
			err := ValidateTransition(from, to)
			if err == nil {
				t.Errorf("ValidateTransition(%s, %s) accepted, want rejection", from, to)
				continue
			}
			if !errors.Is(err, catalog.ErrInvalidTransition) {
				t.Errorf("ValidateTransition(%s, %s) error = %v, want ErrInvalidTransition", from, to, err)
			}
			if !strings.Contains(err.Error(), string(from)) || !strings.Contains(err.Error(), string(to)) {
				t.Errorf("rejection message %q does not name both states", err.Error())
			}
		}
	}
}

func TestValidateTransition_TerminalStatesHaveNoExit(t *testing.T) {
	for _, from := range []catalog.OrderStatus{catalog.StatusDelivered, catalog.StatusCancelled} {
		for _, to := range catalog.OrderStatuses {
			if err := ValidateTransition(from, to); err == nil {
				t.Errorf("transition out of terminal state %s to %s accepted", from, to)
			}
		}
	}
}

func TestValidateTransition_UnknownState(t *testing.T) {
	if err := ValidateTransition(catalog.OrderStatus("REFUNDED"), catalog.StatusPaid); err == nil {
		t.Error("unknown source state accepted")
	}
}
