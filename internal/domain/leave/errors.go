package leave

import "errors"

var (
	ErrLeaveBalanceNotFound = errors.New("leave balance not found")
)
