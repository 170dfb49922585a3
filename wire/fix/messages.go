package fix

import "time"

// HeaderFields are the common session-level header fields every FIX
// message in this engine carries, in wire order: 34 (MsgSeqNum), 49
// (SenderCompID), 56 (TargetCompID), 52 (SendingTime).
type HeaderFields struct {
	MsgSeqNum    int
	SenderCompID string
	TargetCompID string
	SendingTime  time.Time
}

func (h HeaderFields) apply(b *Builder) *Builder {
	b.SetInt(TagMsgSeqNum, h.MsgSeqNum)
	b.Set(TagSenderCompID, h.SenderCompID)
	b.Set(TagTargetCompID, h.TargetCompID)
	b.Set(TagSendingTime, h.SendingTime.UTC().Format("20060102-15:04:05.000"))
	return b
}

// BuildLogon encodes MsgType=A: EncryptMethod=0, HeartBtInt, and (for
// FIXT.1.1 sessions) a DefaultApplVerID.
func BuildLogon(beginString string, h HeaderFields, heartBtInt int, resetSeqNum bool, defaultApplVerID string) []byte {
	b := NewBuilder(beginString, MsgTypeLogon)
	h.apply(b)
	b.SetInt(TagEncryptMethod, 0)
	b.SetInt(TagHeartBtInt, heartBtInt)
	if resetSeqNum {
		b.Set(TagResetSeqNumFlag, "Y")
	}
	if defaultApplVerID != "" {
		b.Set(TagDefaultApplVerID, defaultApplVerID)
	}
	return b.Build()
}

// BuildLogout encodes MsgType=5, optionally carrying a free-text reason.
func BuildLogout(beginString string, h HeaderFields, text string) []byte {
	b := NewBuilder(beginString, MsgTypeLogout)
	h.apply(b)
	if text != "" {
		b.Set(TagText, text)
	}
	return b.Build()
}

// BuildHeartbeat encodes MsgType=0, echoing TestReqID when replying to a
// TestRequest.
func BuildHeartbeat(beginString string, h HeaderFields, testReqID string) []byte {
	b := NewBuilder(beginString, MsgTypeHeartbeat)
	h.apply(b)
	if testReqID != "" {
		b.Set(TagTestReqID, testReqID)
	}
	return b.Build()
}

// BuildTestRequest encodes MsgType=1.
func BuildTestRequest(beginString string, h HeaderFields, testReqID string) []byte {
	b := NewBuilder(beginString, MsgTypeTestRequest)
	h.apply(b)
	b.Set(TagTestReqID, testReqID)
	return b.Build()
}

// BuildResendRequest encodes MsgType=2 with BeginSeqNo/EndSeqNo for gap
// recovery: EndSeqNo=0 means "resend through current".
func BuildResendRequest(beginString string, h HeaderFields, beginSeqNo, endSeqNo int) []byte {
	b := NewBuilder(beginString, MsgTypeResendRequest)
	h.apply(b)
	b.SetInt(TagBeginSeqNo, beginSeqNo)
	b.SetInt(TagEndSeqNo, endSeqNo)
	return b.Build()
}

// BuildSequenceReset encodes MsgType=4 (EOD reset or gap fill).
func BuildSequenceReset(beginString string, h HeaderFields, newSeqNo int, gapFill bool) []byte {
	b := NewBuilder(beginString, MsgTypeSequenceReset)
	h.apply(b)
	b.SetInt(TagNewSeqNo, newSeqNo)
	if gapFill {
		b.Set(TagGapFillFlag, "Y")
	}
	return b.Build()
}

// BuildReject encodes MsgType=3, the protocol-level session reject.
func BuildReject(beginString string, h HeaderFields, refSeqNum int, refTagID int, refMsgType, reason, text string) []byte {
	b := NewBuilder(beginString, MsgTypeReject)
	h.apply(b)
	b.SetInt(TagRefSeqNum, refSeqNum)
	if refTagID != 0 {
		b.SetInt(TagRefTagID, refTagID)
	}
	if refMsgType != "" {
		b.Set(TagRefMsgType, refMsgType)
	}
	if reason != "" {
		b.Set(TagSessionRejectReason, reason)
	}
	if text != "" {
		b.Set(TagText, text)
	}
	return b.Build()
}
