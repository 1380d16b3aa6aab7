package attendance

import "errors"

var (
	ErrInvalidPeriod = errors.New("attendance period end is before start")
)
