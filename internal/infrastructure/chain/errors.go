package chain

import (
	"bytes"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/mineralchain/roles-admin/internal/core/domain"
)

// ErrTxReverted is the cause of a RemoteError raised for a mined
// transaction whose receipt reports failure.
var ErrTxReverted = errors.New("transaction reverted")

// revertSelector is the selector of the builtin Error(string).
var revertSelector = []byte{0x08, 0xc3, 0x79, 0xa0}

// DecodeRevert extracts a structured code from err when the node attached
// revert data to it. The code is the custom error name when the selector is
// known to parsed, or the revert reason string for Error(string). Errors
// without revert data are returned unchanged.
func DecodeRevert(parsed abi.ABI, err error) error {
	if err == nil {
		return nil
	}
	data, ok := revertData(err)
	if !ok || len(data) < 4 {
		return err
	}
	if code := revertCode(parsed, data); code != "" {
		return &domain.RemoteError{Code: code, Err: err}
	}
	return err
}

func revertCode(parsed abi.ABI, data []byte) string {
	if bytes.Equal(data[:4], revertSelector) {
		reason, err := abi.UnpackRevert(data)
		if err != nil {
			return ""
		}
		return reason
	}
	for name, e := range parsed.Errors {
		if bytes.Equal(e.ID[:4], data[:4]) {
			return name
		}
	}
	return ""
}

func revertData(err error) ([]byte, bool) {
	var de rpc.DataError
	if !errors.As(err, &de) {
		return nil, false
	}
	switch v := de.ErrorData().(type) {
	case string:
		b, err := hexutil.Decode(strings.TrimSpace(v))
		if err != nil {
			return nil, false
		}
		return b, true
	case []byte:
		return v, true
	default:
		return nil, false
	}
}
