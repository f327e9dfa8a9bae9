package usecases

import (
	"context"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"kitchenware-market.backend/internal/domain/authz"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/pkg/logger"
	"kitchenware-market.backend/pkg/metrics"
)

// requirePermission records and logs denials before returning ErrPermissionDenied.
func requirePermission(ctx context.Context, operation string, allowed bool) error {
	if err := authz.Require(allowed); err != nil {
		metrics.PermissionDenied.WithLabelValues(operation).Inc()
		logger.Debug(ctx, "Permission denied", zap.String("operation", operation))
		return err
	}
	return nil
}

func requiredText(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", domainerrors.NewValidationError(field, "This field is required.")
	}
	return optionalText(field, value, max)
}

func optionalText(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if max > 0 && utf8.RuneCountInString(value) > max {
		return "", domainerrors.NewValidationError(field, maxLengthMessage(max))
	}
	return value, nil
}

func maxLengthMessage(max int) string {
	return "Ensure this value has at most " + strconv.Itoa(max) + " characters."
}

// hasAtMostTwoDecimals reports whether price fits a decimal(10,2) column.
func hasAtMostTwoDecimals(price float64) bool {
	return math.Round(price*100)/100 == price
}
