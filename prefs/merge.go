package prefs

// Merge overlays source onto target and returns target.
//
// A document in source is merged recursively into the document at the same
// key in target. When target holds anything else at that key (or nothing),
// the merge starts from an empty document and the old value is dropped.
// Every other source value replaces the target value with a copy; lists are
// not concatenated. Keys that only exist in target are left alone.
//
// target is modified in place. A nil target is treated as empty and a new
// Document is returned.
func Merge(target, source Document) Document {
	if target == nil {
		target = Document{}
	}
	for k, v := range source {
		if sv, ok := v.Document(); ok {
			existing, ok := target[k].Document()
			if !ok {
				existing = Document{}
			}
			target[k] = Doc(Merge(existing, sv))
			continue
		}
		target[k] = v.Clone()
	}
	return target
}
