package diff

// KeyAddition names a key present only in the new list and the index it
// occupies there, which the reconciler turns into sibling hops from the
// list anchor.
type KeyAddition struct {
	Key   string
	Index int
}

// Keys computes the symmetric key-set difference between two renders of a
// keyed list. Deletions are old keys absent from the new list, in old
// order; additions are new keys absent from the old list, with their new
// positions, in new order. Reordering of surviving keys produces no
// entries; moves are not detected.
func Keys(oldKeys, newKeys []string) (deletions []string, additions []KeyAddition) {
	oldSet := make(map[string]struct{}, len(oldKeys))
	for _, k := range oldKeys {
		oldSet[k] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(newKeys))
	for _, k := range newKeys {
		newSet[k] = struct{}{}
	}

	for _, k := range oldKeys {
		if _, kept := newSet[k]; !kept {
			deletions = append(deletions, k)
		}
	}
	for i, k := range newKeys {
		if _, existed := oldSet[k]; !existed {
			additions = append(additions, KeyAddition{Key: k, Index: i})
		}
	}
	return deletions, additions
}
