package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingField marks a control-plane frame without one of its required
// fields. Such frames are dropped without a reply.
var ErrMissingField = errors.New("required field missing")

// Inbound frames decode into pointers so an absent field differs from an
// empty one.
type registerPCIn struct {
	UniqueID      *string `json:"uniqueId"`
	Password      *string `json:"password"`
	GuestPassword *string `json:"guestPassword"`
}

type connectMobileIn struct {
	UniqueID *string `json:"uniqueId"`
}

type requestControlIn struct {
	Password *string `json:"password"`
}

func DecodeRegisterPC(data []byte) (RegisterPC, error) {
	var in registerPCIn
	if err := json.Unmarshal(data, &in); err != nil {
		return RegisterPC{}, fmt.Errorf("decode %s: %w", TypeRegisterPC, err)
	}
	switch {
	case in.UniqueID == nil:
		return RegisterPC{}, fmt.Errorf("%s uniqueId: %w", TypeRegisterPC, ErrMissingField)
	case in.Password == nil:
		return RegisterPC{}, fmt.Errorf("%s password: %w", TypeRegisterPC, ErrMissingField)
	case in.GuestPassword == nil:
		return RegisterPC{}, fmt.Errorf("%s guestPassword: %w", TypeRegisterPC, ErrMissingField)
	}
	return RegisterPC{
		Type:          TypeRegisterPC,
		UniqueID:      *in.UniqueID,
		Password:      *in.Password,
		GuestPassword: *in.GuestPassword,
	}, nil
}

func DecodeConnectMobile(data []byte) (ConnectMobile, error) {
	var in connectMobileIn
	if err := json.Unmarshal(data, &in); err != nil {
		return ConnectMobile{}, fmt.Errorf("decode %s: %w", TypeConnectMobile, err)
	}
	if in.UniqueID == nil {
		return ConnectMobile{}, fmt.Errorf("%s uniqueId: %w", TypeConnectMobile, ErrMissingField)
	}
	return ConnectMobile{Type: TypeConnectMobile, UniqueID: *in.UniqueID}, nil
}

func DecodeRequestControl(data []byte) (RequestControl, error) {
	var in requestControlIn
	if err := json.Unmarshal(data, &in); err != nil {
		return RequestControl{}, fmt.Errorf("decode %s: %w", TypeRequestControl, err)
	}
	if in.Password == nil {
		return RequestControl{}, fmt.Errorf("%s password: %w", TypeRequestControl, ErrMissingField)
	}
	return RequestControl{Type: TypeRequestControl, Password: *in.Password}, nil
}
