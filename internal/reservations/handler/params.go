package handler

import (
	"fmt"
	"net/url"
	"strconv"

	apperrors "restobook/pkg/errors"
)

func requiredParam(query url.Values, name string) (string, error) {
	value := query.Get(name)
	if value == "" {
		return "", apperrors.InvalidInput(fmt.Sprintf("missing %s parameter", name))
	}
	return value, nil
}

func intParam(query url.Values, name string) (int, error) {
	raw, err := requiredParam(query, name)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter: %s", name, raw))
	}
	return value, nil
}
