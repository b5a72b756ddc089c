// Copyright (c) 2025 The GuruxKeeper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package revert normalizes the revert reasons reported by the local solo chain and by
// remote JSON-RPC nodes into one canonical string.
package revert

import (
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

var (
	// ErrUnrecognizedShape is returned when an error is neither a local message nor a remote reason.
	ErrUnrecognizedShape = errors.New("error don't have revert string")
	// ErrMalformedReason is returned when the quote or marker characters are missing.
	ErrMalformedReason = errors.New("malformed revert string")
)

const (
	revertedMarker = "reverted:"
	invalidRequest = "invalid request"

	localMessagePrefix = "VM Exception while processing transaction: reverted with reason string "
)

// Backend names the execution environment a call was issued against.
type Backend string

// Local is the in-process solo chain. Any other name is a remote-compatible node.
const Local Backend = "solo"

// IsLocal returns true if b is the local simulated backend.
func (b Backend) IsLocal() bool {
	return b == Local
}

func (b Backend) String() string {
	return string(b)
}

// Error is the closed set of revert errors produced by the backends.
type Error interface {
	error
	revertShape()
}

// LocalMessageError is a revert reported by the local chain. The reason is quoted inside Message.
type LocalMessageError struct {
	Message string
	Data    []byte
}

func (e *LocalMessageError) Error() string { return e.Message }
func (e *LocalMessageError) revertShape()  {}

// RemoteReasonError is a revert reported by a remote node, in the form
// "execution reverted: <reason>[: invalid request]".
type RemoteReasonError struct {
	Reason string
	Code   int
	Data   []byte
}

func (e *RemoteReasonError) Error() string { return e.Reason }
func (e *RemoteReasonError) revertShape()  {}

// NewLocal builds the error the local chain reports for a reverted call.
func NewLocal(reason string, data []byte) *LocalMessageError {
	return &LocalMessageError{
		Message: localMessagePrefix + "'" + reason + "'",
		Data:    data,
	}
}

// NewRemote builds the error a remote node reports for a reverted call.
// Transaction submissions carry the invalid request suffix.
func NewRemote(reason string, withSuffix bool, data []byte) *RemoteReasonError {
	msg := "execution " + revertedMarker + " " + reason
	if withSuffix {
		msg += ": " + invalidRequest
	}
	return &RemoteReasonError{
		Reason: msg,
		Code:   3,
		Data:   data,
	}
}

// IsRevert returns true if err wraps one of the revert error variants.
func IsRevert(err error) bool {
	var e Error
	return errors.As(err, &e)
}

// Extract returns the canonical revert reason carried by err.
//
// A local message is only considered when backend is the local chain, the remote
// reason is accepted from any backend.
func Extract(err error, backend Backend) (string, error) {
	var local *LocalMessageError
	if backend.IsLocal() && errors.As(err, &local) {
		return extractQuoted(local.Message)
	}

	var remote *RemoteReasonError
	if errors.As(err, &remote) {
		return extractReverted(remote.Reason)
	}

	if err == nil {
		return "", pkgerrors.Wrap(ErrUnrecognizedShape, "nil error")
	}
	return "", pkgerrors.Wrapf(ErrUnrecognizedShape, "backend %s: %T", backend, err)
}

func extractQuoted(msg string) (string, error) {
	start := strings.IndexByte(msg, '\'')
	if start < 0 {
		return "", pkgerrors.Wrapf(ErrMalformedReason, "no opening quote in %q", msg)
	}
	end := strings.IndexByte(msg[start+1:], '\'')
	if end < 0 {
		return "", pkgerrors.Wrapf(ErrMalformedReason, "no closing quote in %q", msg)
	}
	return msg[start+1 : start+1+end], nil
}

func extractReverted(reason string) (string, error) {
	i := strings.Index(reason, revertedMarker)
	if i < 0 {
		return "", pkgerrors.Wrapf(ErrMalformedReason, "no %q marker in %q", revertedMarker, reason)
	}

	// marker plus the single separating space
	start := i + len(revertedMarker) + 1
	if start > len(reason) {
		return "", nil
	}
	out := reason[start:]

	if j := strings.Index(out, invalidRequest); j > 0 {
		out = out[:max(j-2, 0)] // 2 = ": "
	}
	return out, nil
}
