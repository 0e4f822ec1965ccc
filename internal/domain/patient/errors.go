package patient

import "errors"

var (
	ErrPatientNotFound         = errors.New("patient not found")
	ErrPatientAlreadyExists    = errors.New("patient with this id already exists")
	ErrInvalidStatusTransition = errors.New("invalid clinical history status transition")
	ErrRecordLocked            = errors.New("clinical history can only be edited while in draft or rejected")
	ErrIncompleteHistory       = errors.New("clinical history is missing required fields")
	ErrObservationsRequired    = errors.New("rejection observations are required")
	ErrVersionConflict         = errors.New("patient record was modified concurrently")
	ErrToothMissing            = errors.New("tooth is marked missing; surfaces cannot be edited")
)
