package model

// MerkleRoot folds a list of transaction hashes into a single root. An
// empty list hashes the empty string. At every level an odd tail is paired
// with itself, and a parent is the digest of the concatenated hex digests
// of its children.
func MerkleRoot(hashes []string) string {
	if len(hashes) == 0 {
		return HashBytes(nil)
	}
	level := make([]string, len(hashes))
	copy(level, hashes)
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]string, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, HashBytes([]byte(level[i]+level[i+1])))
		}
		level = next
	}
	return level[0]
}
