package domain

import "errors"

// Policy and lookup outcomes are distinct sentinels so callers can render a
// 403 differently from a 404 without string-matching messages. A denied
// single-object fetch is always an explicit error, never silently empty data.
var ErrPolicyDenied = errors.New("access denied by policy")
var ErrNotFound = errors.New("resource not found")

// Safety workflow errors.
var ErrSelfApproval = errors.New("requester cannot review their own removal request")
var ErrReviewerRank = errors.New("reviewer must out-rank the requester")
var ErrAlreadyReviewed = errors.New("removal request already reviewed")
var ErrDVWriteBlocked = errors.New("attribute is restricted while the safety flag is set")

// Auth errors.
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
