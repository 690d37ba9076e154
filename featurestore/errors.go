package featurestore

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrTableNotFound        = errors.New("table not found")
	ErrEntityNotFound       = errors.New("entity not found")
	ErrFeatureNameCollision = errors.New("feature name collision")
	ErrMissingRequestData   = errors.New("missing request data")
	ErrBackendUnavailable   = errors.New("backend unavailable")
	ErrRegistryUnavailable  = errors.New("registry unavailable")
	// ErrFeatureNotFound also matches ErrInvalidRequest.
	ErrFeatureNotFound = errors.New("feature not found")
	ErrTransformFailed = errors.New("transform failed")
)

func invalidRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

type featureNotFoundError struct {
	Table   string
	Feature string
}

func (e *featureNotFoundError) Error() string {
	return fmt.Sprintf("feature %s not found in table %s", e.Feature, e.Table)
}

func (e *featureNotFoundError) Is(target error) bool {
	return target == ErrFeatureNotFound || target == ErrInvalidRequest
}

type FeatureNameCollisionError struct {
	Refs             []string
	FullFeatureNames bool
}

func (e *FeatureNameCollisionError) Error() string {
	if e.FullFeatureNames {
		return fmt.Sprintf("duplicate feature references: %s", strings.Join(e.Refs, ", "))
	}
	return fmt.Sprintf("feature name collision on %s, use full feature names to disambiguate", strings.Join(e.Refs, ", "))
}

func (e *FeatureNameCollisionError) Is(target error) bool {
	return target == ErrFeatureNameCollision
}

type TableNotFoundError struct {
	Name    string
	Project string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table %s not found in project %s", e.Name, e.Project)
}

func (e *TableNotFoundError) Is(target error) bool {
	return target == ErrTableNotFound
}

type EntityNotFoundError struct {
	Name    string
	Project string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity %s not found in project %s", e.Name, e.Project)
}

func (e *EntityNotFoundError) Is(target error) bool {
	return target == ErrEntityNotFound
}

type MissingRequestDataError struct {
	Names []string
}

func (e *MissingRequestDataError) Error() string {
	return fmt.Sprintf("request data missing from entity rows: %s", strings.Join(e.Names, ", "))
}

func (e *MissingRequestDataError) Is(target error) bool {
	return target == ErrMissingRequestData
}

// BackendError is a failed online store read of one table.
type BackendError struct {
	Table string
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("online read of table %s failed: %v", e.Table, e.Err)
}

func (e *BackendError) Is(target error) bool {
	return target == ErrBackendUnavailable
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

type registryError struct {
	Project string
	Err     error
}

func (e *registryError) Error() string {
	return fmt.Sprintf("fetch registry of project %s failed: %v", e.Project, e.Err)
}

func (e *registryError) Is(target error) bool {
	return target == ErrRegistryUnavailable
}

func (e *registryError) Unwrap() error {
	return e.Err
}

type transformError struct {
	Table string
	Err   error
}

func (e *transformError) Error() string {
	return fmt.Sprintf("transform of table %s failed: %v", e.Table, e.Err)
}

func (e *transformError) Is(target error) bool {
	return target == ErrTransformFailed
}

func (e *transformError) Unwrap() error {
	return e.Err
}
