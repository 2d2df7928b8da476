package interaction

// IDIndex assigns dense zero-based codes to raw identifiers in
// first-seen order. The mapping is a bijection: each raw ID owns
// exactly one code and codes are never reassigned.
type IDIndex struct {
	toCode map[string]int
	toRaw  []string
}

// NewIDIndex creates an empty index.
func NewIDIndex() *IDIndex {
	return &IDIndex{
		toCode: make(map[string]int),
	}
}

// Code returns the dense code for raw, assigning the next free code on
// first sight.
func (x *IDIndex) Code(raw string) int {
	if code, ok := x.toCode[raw]; ok {
		return code
	}
	code := len(x.toRaw)
	x.toCode[raw] = code
	x.toRaw = append(x.toRaw, raw)
	return code
}

// Lookup returns the dense code for raw without assigning one.
func (x *IDIndex) Lookup(raw string) (int, bool) {
	code, ok := x.toCode[raw]
	return code, ok
}

// Raw returns the raw identifier a dense code was assigned to.
func (x *IDIndex) Raw(code int) (string, bool) {
	if code < 0 || code >= len(x.toRaw) {
		return "", false
	}
	return x.toRaw[code], true
}

// Len returns the number of assigned codes.
func (x *IDIndex) Len() int {
	return len(x.toRaw)
}
