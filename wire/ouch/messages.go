package ouch

import (
	"encoding/binary"
	"fmt"

	"code.hybscloud.com/xconnect/buf"
)

var be = binary.BigEndian

// EnterOrder is a flyweight view over the client -> server new-order ('O')
// message: the fixed 49-byte OUCH 4.2 layout. WrapEnterOrderForWriting
// installs the view over a freshly allocated region and stamps the type
// byte; WrapEnterOrderForReading installs it over received bytes after
// checking the type. Every accessor reads or writes straight through the
// wrapped Buffer; nothing is copied until a caller extracts a Go value.
type EnterOrder struct{ buf.Buffer }

// WrapEnterOrderForWriting allocates a 49-byte region and stamps the
// EnterOrder type byte, ready for the fluent Set* accessors.
func WrapEnterOrderForWriting() *EnterOrder {
	m := &EnterOrder{buf.Wrap(make([]byte, 49), 0, 49)}
	_ = m.PutUint8(0, TypeEnterOrder)
	return m
}

// WrapEnterOrderForReading installs a read-only EnterOrder view over data,
// which must already hold exactly one framed 49-byte body (as returned by
// ExpectedLength).
func WrapEnterOrderForReading(data []byte) (*EnterOrder, error) {
	m := &EnterOrder{buf.Wrap(data, 0, len(data))}
	typ, err := m.GetUint8(0)
	if err != nil {
		return nil, err
	}
	if typ != TypeEnterOrder {
		return nil, fmt.Errorf("ouch: wrap EnterOrder: %w: got %q", ErrUnknownType, typ)
	}
	return m, nil
}

func (m *EnterOrder) Token() string                  { v, _ := m.GetAlpha(1, tokenWidth); return v }
func (m *EnterOrder) SetToken(v string) *EnterOrder  { _ = m.PutAlpha(1, tokenWidth, v); return m }
func (m *EnterOrder) Side() byte                     { v, _ := m.GetUint8(15); return v }
func (m *EnterOrder) SetSide(v byte) *EnterOrder      { _ = m.PutUint8(15, v); return m }
func (m *EnterOrder) Shares() uint32                 { v, _ := m.GetUint32(16, be); return v }
func (m *EnterOrder) SetShares(v uint32) *EnterOrder { _ = m.PutUint32(16, v, be); return m }
func (m *EnterOrder) Symbol() string                 { v, _ := m.GetAlpha(20, symbolWidth); return v }
func (m *EnterOrder) SetSymbol(v string) *EnterOrder {
	_ = m.PutAlpha(20, symbolWidth, v)
	return m
}
func (m *EnterOrder) Price() float64 { v, _ := m.GetPrice32(28, be, buf.ScaleOUCH); return v }
func (m *EnterOrder) SetPrice(v float64) *EnterOrder {
	_ = m.PutPrice32(28, v, be, buf.ScaleOUCH)
	return m
}
func (m *EnterOrder) TimeInForce() uint32 { v, _ := m.GetUint32(32, be); return v }
func (m *EnterOrder) SetTimeInForce(v uint32) *EnterOrder {
	_ = m.PutUint32(32, v, be)
	return m
}
func (m *EnterOrder) Firm() string                  { v, _ := m.GetAlpha(36, firmWidth); return v }
func (m *EnterOrder) SetFirm(v string) *EnterOrder  { _ = m.PutAlpha(36, firmWidth, v); return m }
func (m *EnterOrder) Display() byte                 { v, _ := m.GetUint8(40); return v }
func (m *EnterOrder) SetDisplay(v byte) *EnterOrder { _ = m.PutUint8(40, v); return m }
func (m *EnterOrder) Capacity() byte                { v, _ := m.GetUint8(41); return v }
func (m *EnterOrder) SetCapacity(v byte) *EnterOrder {
	_ = m.PutUint8(41, v)
	return m
}
func (m *EnterOrder) IntermarketSweepEligible() byte { v, _ := m.GetUint8(42); return v }
func (m *EnterOrder) SetIntermarketSweepEligible(v byte) *EnterOrder {
	_ = m.PutUint8(42, v)
	return m
}
func (m *EnterOrder) MinimumQuantity() uint32 { v, _ := m.GetUint32(43, be); return v }
func (m *EnterOrder) SetMinimumQuantity(v uint32) *EnterOrder {
	_ = m.PutUint32(43, v, be)
	return m
}
func (m *EnterOrder) CrossType() byte { v, _ := m.GetUint8(47); return v }
func (m *EnterOrder) SetCrossType(v byte) *EnterOrder {
	_ = m.PutUint8(47, v)
	return m
}
func (m *EnterOrder) CustomerType() byte { v, _ := m.GetUint8(48); return v }
func (m *EnterOrder) SetCustomerType(v byte) *EnterOrder {
	_ = m.PutUint8(48, v)
	return m
}

// OrderAccepted is a flyweight view over the server -> client order-accepted
// message ('A' in the order-entry phase), the fixed 55-byte layout. Version
// disambiguates the V42 base layout from any later revision that might
// extend it: the reader always routes to this single type and callers
// branch on Version.
type OrderAccepted struct{ buf.Buffer }

// WrapOrderAcceptedForWriting allocates a 55-byte region and stamps the type.
func WrapOrderAcceptedForWriting() *OrderAccepted {
	m := &OrderAccepted{buf.Wrap(make([]byte, 55), 0, 55)}
	_ = m.PutUint8(0, TypeOrderAccepted)
	return m
}

// WrapOrderAcceptedForReading installs a read-only OrderAccepted view over a
// framed 55-byte body.
func WrapOrderAcceptedForReading(data []byte) (*OrderAccepted, error) {
	m := &OrderAccepted{buf.Wrap(data, 0, len(data))}
	typ, err := m.GetUint8(0)
	if err != nil {
		return nil, err
	}
	if typ != TypeOrderAccepted {
		return nil, fmt.Errorf("ouch: wrap OrderAccepted: %w: got %q", ErrUnknownType, typ)
	}
	return m, nil
}

func (m *OrderAccepted) Token() string                     { v, _ := m.GetAlpha(1, tokenWidth); return v }
func (m *OrderAccepted) SetToken(v string) *OrderAccepted  { _ = m.PutAlpha(1, tokenWidth, v); return m }
func (m *OrderAccepted) Side() byte                        { v, _ := m.GetUint8(15); return v }
func (m *OrderAccepted) SetSide(v byte) *OrderAccepted     { _ = m.PutUint8(15, v); return m }
func (m *OrderAccepted) OrderReferenceNumber() uint64      { v, _ := m.GetUint64(16, be); return v }
func (m *OrderAccepted) SetOrderReferenceNumber(v uint64) *OrderAccepted {
	_ = m.PutUint64(16, v, be)
	return m
}
func (m *OrderAccepted) Shares() uint32                    { v, _ := m.GetUint32(24, be); return v }
func (m *OrderAccepted) SetShares(v uint32) *OrderAccepted { _ = m.PutUint32(24, v, be); return m }
func (m *OrderAccepted) Symbol() string                    { v, _ := m.GetAlpha(28, symbolWidth); return v }
func (m *OrderAccepted) SetSymbol(v string) *OrderAccepted {
	_ = m.PutAlpha(28, symbolWidth, v)
	return m
}
func (m *OrderAccepted) Price() float64 { v, _ := m.GetPrice32(36, be, buf.ScaleOUCH); return v }
func (m *OrderAccepted) SetPrice(v float64) *OrderAccepted {
	_ = m.PutPrice32(36, v, be, buf.ScaleOUCH)
	return m
}
func (m *OrderAccepted) TimeInForce() uint32 { v, _ := m.GetUint32(40, be); return v }
func (m *OrderAccepted) SetTimeInForce(v uint32) *OrderAccepted {
	_ = m.PutUint32(40, v, be)
	return m
}
func (m *OrderAccepted) Firm() string                    { v, _ := m.GetAlpha(44, firmWidth); return v }
func (m *OrderAccepted) SetFirm(v string) *OrderAccepted { _ = m.PutAlpha(44, firmWidth, v); return m }
func (m *OrderAccepted) Display() byte                   { v, _ := m.GetUint8(48); return v }
func (m *OrderAccepted) SetDisplay(v byte) *OrderAccepted {
	_ = m.PutUint8(48, v)
	return m
}
func (m *OrderAccepted) Capacity() byte { v, _ := m.GetUint8(49); return v }
func (m *OrderAccepted) SetCapacity(v byte) *OrderAccepted {
	_ = m.PutUint8(49, v)
	return m
}
func (m *OrderAccepted) IntermarketSweepEligible() byte { v, _ := m.GetUint8(50); return v }
func (m *OrderAccepted) SetIntermarketSweepEligible(v byte) *OrderAccepted {
	_ = m.PutUint8(50, v)
	return m
}
func (m *OrderAccepted) CrossType() byte { v, _ := m.GetUint8(51); return v }
func (m *OrderAccepted) SetCrossType(v byte) *OrderAccepted {
	_ = m.PutUint8(51, v)
	return m
}
func (m *OrderAccepted) OrderState() byte { v, _ := m.GetUint8(52); return v }
func (m *OrderAccepted) SetOrderState(v byte) *OrderAccepted {
	_ = m.PutUint8(52, v)
	return m
}
func (m *OrderAccepted) BBOWeightIndicator() byte { v, _ := m.GetUint8(53); return v }
func (m *OrderAccepted) SetBBOWeightIndicator(v byte) *OrderAccepted {
	_ = m.PutUint8(53, v)
	return m
}
func (m *OrderAccepted) Version() byte { v, _ := m.GetUint8(54); return v }
func (m *OrderAccepted) SetVersion(v byte) *OrderAccepted {
	_ = m.PutUint8(54, v)
	return m
}

// Rejected is a flyweight view over the shared 3-byte OrderRejected /
// LoginRejected layout: type byte + reason (uint16, big-endian). Neither
// message carries a token, so the view exposes only Reason.
type Rejected struct{ buf.Buffer }

// WrapOrderRejectedForWriting allocates a 3-byte OrderRejected region.
func WrapOrderRejectedForWriting(reason uint16) *Rejected {
	m := &Rejected{buf.Wrap(make([]byte, 3), 0, 3)}
	_ = m.PutUint8(0, TypeOrderRejected)
	m.SetReason(reason)
	return m
}

// WrapRejectedForReading installs a read-only Rejected view over a 3-byte
// OrderRejected or LoginRejected body.
func WrapRejectedForReading(data []byte) (*Rejected, error) {
	m := &Rejected{buf.Wrap(data, 0, len(data))}
	if _, err := m.GetUint8(0); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Rejected) Reason() uint16 { v, _ := m.GetUint16(1, be); return v }
func (m *Rejected) SetReason(v uint16) *Rejected {
	_ = m.PutUint16(1, v, be)
	return m
}

// LoginRequest is a flyweight view over the client -> server handshake
// message ('L'), the fixed 39-byte layout.
type LoginRequest struct{ buf.Buffer }

// WrapLoginRequestForWriting allocates a 39-byte region and stamps the type.
func WrapLoginRequestForWriting() *LoginRequest {
	m := &LoginRequest{buf.Wrap(make([]byte, 39), 0, 39)}
	_ = m.PutUint8(0, TypeLoginRequest)
	return m
}

// WrapLoginRequestForReading installs a read-only LoginRequest view.
func WrapLoginRequestForReading(data []byte) (*LoginRequest, error) {
	m := &LoginRequest{buf.Wrap(data, 0, len(data))}
	typ, err := m.GetUint8(0)
	if err != nil {
		return nil, err
	}
	if typ != TypeLoginRequest {
		return nil, fmt.Errorf("ouch: wrap LoginRequest: %w: got %q", ErrUnknownType, typ)
	}
	return m, nil
}

func (m *LoginRequest) Username() string { v, _ := m.GetAlpha(1, 6); return v }
func (m *LoginRequest) SetUsername(v string) *LoginRequest {
	_ = m.PutAlpha(1, 6, v)
	return m
}
func (m *LoginRequest) Password() string { v, _ := m.GetAlpha(7, 10); return v }
func (m *LoginRequest) SetPassword(v string) *LoginRequest {
	_ = m.PutAlpha(7, 10, v)
	return m
}
func (m *LoginRequest) RequestedSession() string { v, _ := m.GetAlpha(17, 10); return v }
func (m *LoginRequest) SetRequestedSession(v string) *LoginRequest {
	_ = m.PutAlpha(17, 10, v)
	return m
}
func (m *LoginRequest) RequestedSequenceNum() uint64 { v, _ := m.GetUint64(27, be); return v }
func (m *LoginRequest) SetRequestedSequenceNum(v uint64) *LoginRequest {
	_ = m.PutUint64(27, v, be)
	return m
}
func (m *LoginRequest) HeartbeatIntervalMs() uint32 { v, _ := m.GetUint32(35, be); return v }
func (m *LoginRequest) SetHeartbeatIntervalMs(v uint32) *LoginRequest {
	_ = m.PutUint32(35, v, be)
	return m
}

// LoginAccepted is a flyweight view over 'A' in the login phase: type byte,
// 2 reserved bytes, and the next sequence number (uint64), the fixed
// 11-byte layout. It carries no session name.
type LoginAccepted struct{ buf.Buffer }

// WrapLoginAcceptedForWriting allocates an 11-byte region and stamps the
// type; the reserved 2 bytes at offset 1 keep the layout symmetric with the
// 3-byte Rejected message.
func WrapLoginAcceptedForWriting() *LoginAccepted {
	m := &LoginAccepted{buf.Wrap(make([]byte, 11), 0, 11)}
	_ = m.PutUint8(0, TypeLoginAccepted)
	_ = m.PutUint16(1, 0, be)
	return m
}

// WrapLoginAcceptedForReading installs a read-only LoginAccepted view.
func WrapLoginAcceptedForReading(data []byte) (*LoginAccepted, error) {
	m := &LoginAccepted{buf.Wrap(data, 0, len(data))}
	typ, err := m.GetUint8(0)
	if err != nil {
		return nil, err
	}
	if typ != TypeLoginAccepted {
		return nil, fmt.Errorf("ouch: wrap LoginAccepted: %w: got %q", ErrUnknownType, typ)
	}
	return m, nil
}

func (m *LoginAccepted) SequenceNumber() uint64 { v, _ := m.GetUint64(3, be); return v }
func (m *LoginAccepted) SetSequenceNumber(v uint64) *LoginAccepted {
	_ = m.PutUint64(3, v, be)
	return m
}

// CancelOrder is a flyweight view over the client -> server 'X' message,
// the fixed 19-byte layout.
type CancelOrder struct{ buf.Buffer }

// WrapCancelOrderForWriting allocates a 19-byte region and stamps the type.
func WrapCancelOrderForWriting() *CancelOrder {
	m := &CancelOrder{buf.Wrap(make([]byte, 19), 0, 19)}
	_ = m.PutUint8(0, TypeCancelOrder)
	return m
}

// WrapCancelOrderForReading installs a read-only CancelOrder view.
func WrapCancelOrderForReading(data []byte) (*CancelOrder, error) {
	m := &CancelOrder{buf.Wrap(data, 0, len(data))}
	typ, err := m.GetUint8(0)
	if err != nil {
		return nil, err
	}
	if typ != TypeCancelOrder {
		return nil, fmt.Errorf("ouch: wrap CancelOrder: %w: got %q", ErrUnknownType, typ)
	}
	return m, nil
}

func (m *CancelOrder) Token() string                  { v, _ := m.GetAlpha(1, tokenWidth); return v }
func (m *CancelOrder) SetToken(v string) *CancelOrder { _ = m.PutAlpha(1, tokenWidth, v); return m }
func (m *CancelOrder) Shares() uint32                 { v, _ := m.GetUint32(15, be); return v }
func (m *CancelOrder) SetShares(v uint32) *CancelOrder {
	_ = m.PutUint32(15, v, be)
	return m
}

// OrderCanceled is a flyweight view over the server -> client 'C' message,
// the fixed 20-byte layout.
type OrderCanceled struct{ buf.Buffer }

// WrapOrderCanceledForWriting allocates a 20-byte region and stamps the type.
func WrapOrderCanceledForWriting() *OrderCanceled {
	m := &OrderCanceled{buf.Wrap(make([]byte, 20), 0, 20)}
	_ = m.PutUint8(0, TypeOrderCanceled)
	return m
}

// WrapOrderCanceledForReading installs a read-only OrderCanceled view.
func WrapOrderCanceledForReading(data []byte) (*OrderCanceled, error) {
	m := &OrderCanceled{buf.Wrap(data, 0, len(data))}
	typ, err := m.GetUint8(0)
	if err != nil {
		return nil, err
	}
	if typ != TypeOrderCanceled {
		return nil, fmt.Errorf("ouch: wrap OrderCanceled: %w: got %q", ErrUnknownType, typ)
	}
	return m, nil
}

func (m *OrderCanceled) Token() string { v, _ := m.GetAlpha(1, tokenWidth); return v }
func (m *OrderCanceled) SetToken(v string) *OrderCanceled {
	_ = m.PutAlpha(1, tokenWidth, v)
	return m
}
func (m *OrderCanceled) DecrementShares() uint32 { v, _ := m.GetUint32(15, be); return v }
func (m *OrderCanceled) SetDecrementShares(v uint32) *OrderCanceled {
	_ = m.PutUint32(15, v, be)
	return m
}
func (m *OrderCanceled) Reason() byte { v, _ := m.GetUint8(19); return v }
func (m *OrderCanceled) SetReason(v byte) *OrderCanceled {
	_ = m.PutUint8(19, v)
	return m
}

// ModifyOrder is a flyweight view over the client -> server 'M' message
// (23 bytes). The wire type code is shared with OrderModified (server ->
// client, 28 bytes); ExpectedLength's Direction parameter picks the right
// fixed length so callers wrap with ModifyOrder or OrderModified without
// guessing from payload shape.
type ModifyOrder struct{ buf.Buffer }

// WrapModifyOrderForWriting allocates a 23-byte region and stamps the type.
func WrapModifyOrderForWriting() *ModifyOrder {
	m := &ModifyOrder{buf.Wrap(make([]byte, 23), 0, 23)}
	_ = m.PutUint8(0, TypeModifyOrder)
	_ = m.PutUint16(20, 0, be)
	return m
}

// WrapModifyOrderForReading installs a read-only ModifyOrder view.
func WrapModifyOrderForReading(data []byte) (*ModifyOrder, error) {
	m := &ModifyOrder{buf.Wrap(data, 0, len(data))}
	typ, err := m.GetUint8(0)
	if err != nil {
		return nil, err
	}
	if typ != TypeModifyOrder {
		return nil, fmt.Errorf("ouch: wrap ModifyOrder: %w: got %q", ErrUnknownType, typ)
	}
	return m, nil
}

func (m *ModifyOrder) Token() string                  { v, _ := m.GetAlpha(1, tokenWidth); return v }
func (m *ModifyOrder) SetToken(v string) *ModifyOrder { _ = m.PutAlpha(1, tokenWidth, v); return m }
func (m *ModifyOrder) Side() byte                     { v, _ := m.GetUint8(15); return v }
func (m *ModifyOrder) SetSide(v byte) *ModifyOrder    { _ = m.PutUint8(15, v); return m }
func (m *ModifyOrder) Shares() uint32                 { v, _ := m.GetUint32(16, be); return v }
func (m *ModifyOrder) SetShares(v uint32) *ModifyOrder {
	_ = m.PutUint32(16, v, be)
	return m
}

// OrderModified is a flyweight view over the server -> client 'M' message
// (28 bytes), sharing its wire type byte with ModifyOrder.
type OrderModified struct{ buf.Buffer }

// WrapOrderModifiedForWriting allocates a 28-byte region and stamps the
// type.
func WrapOrderModifiedForWriting() *OrderModified {
	m := &OrderModified{buf.Wrap(make([]byte, 28), 0, 28)}
	_ = m.PutUint8(0, TypeOrderModified)
	return m
}

// WrapOrderModifiedForReading installs a read-only OrderModified view.
func WrapOrderModifiedForReading(data []byte) (*OrderModified, error) {
	m := &OrderModified{buf.Wrap(data, 0, len(data))}
	typ, err := m.GetUint8(0)
	if err != nil {
		return nil, err
	}
	if typ != TypeOrderModified {
		return nil, fmt.Errorf("ouch: wrap OrderModified: %w: got %q", ErrUnknownType, typ)
	}
	return m, nil
}

func (m *OrderModified) Token() string { v, _ := m.GetAlpha(1, tokenWidth); return v }
func (m *OrderModified) SetToken(v string) *OrderModified {
	_ = m.PutAlpha(1, tokenWidth, v)
	return m
}
func (m *OrderModified) Side() byte { v, _ := m.GetUint8(15); return v }
func (m *OrderModified) SetSide(v byte) *OrderModified {
	_ = m.PutUint8(15, v)
	return m
}
func (m *OrderModified) Shares() uint32 { v, _ := m.GetUint32(16, be); return v }
func (m *OrderModified) SetShares(v uint32) *OrderModified {
	_ = m.PutUint32(16, v, be)
	return m
}
func (m *OrderModified) Price() float64 { v, _ := m.GetPrice32(20, be, buf.ScaleOUCH); return v }
func (m *OrderModified) SetPrice(v float64) *OrderModified {
	_ = m.PutPrice32(20, v, be, buf.ScaleOUCH)
	return m
}
