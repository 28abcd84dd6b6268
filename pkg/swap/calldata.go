package swap

// AppendSignature attaches a permit signature to a firm quote's call data
// the way the settlement contract expects it:
//
//	originalCallData ++ 32-byte big-endian signature length ++ signature
func AppendSignature(callData, signature []byte) []byte {
	length := make([]byte, 32)
	length[31] = byte(len(signature))
	length[30] = byte(len(signature) >> 8)

	out := make([]byte, 0, len(callData)+len(length)+len(signature))
	out = append(out, callData...)
	out = append(out, length...)
	out = append(out, signature...)
	return out
}
