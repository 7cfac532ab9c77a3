package assemble

import "github.com/go-python/pybc/pyval"

// stringPool is an ordered, first-occurrence-deduplicated list of names
// (consts/names/varnames pools share this shape; spec §4.3.1).
type stringPool struct {
	order []string
	index map[string]uint32
}

func newStringPool(seed []string) *stringPool {
	p := &stringPool{index: make(map[string]uint32, len(seed))}
	for _, s := range seed {
		p.add(s)
	}
	return p
}

func (p *stringPool) add(s string) uint32 {
	if i, ok := p.index[s]; ok {
		return i
	}
	i := uint32(len(p.order))
	p.order = append(p.order, s)
	p.index[s] = i
	return i
}

// constPool is consts' ordered, dedup-by-structural-key list (spec
// §4.3.1). A reserved docstring slot, if any, occupies index 0 and is
// tracked separately so a later LOAD_CONST of the same value is reported
// as DuplicateDocstring rather than silently collapsed into it.
type constPool struct {
	order        []pyval.Value
	index        map[pyval.Key]uint32
	docstringKey *pyval.Key
}

func newConstPool(docstring *pyval.Value) *constPool {
	p := &constPool{index: make(map[pyval.Key]uint32)}
	if docstring != nil && docstring.Kind() != pyval.KindNone {
		k := pyval.KeyOf(*docstring)
		p.docstringKey = &k
		p.order = append(p.order, *docstring)
		p.index[k] = 0
	}
	return p
}

// add returns the pool index for v, or ok=false if v collides with the
// reserved docstring slot (the caller raises DuplicateDocstring).
func (p *constPool) add(v pyval.Value) (idx uint32, ok bool) {
	k := pyval.KeyOf(v)
	if p.docstringKey != nil && k == *p.docstringKey {
		return 0, false
	}
	if i, exists := p.index[k]; exists {
		return i, true
	}
	i := uint32(len(p.order))
	p.order = append(p.order, v)
	p.index[k] = i
	return i, true
}
