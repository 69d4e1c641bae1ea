package summary

// Aggregation folds the items of one partition into a scalar.
type Aggregation[T any] func(items []T) int64

// Count counts the items of the partition.
func Count[T any]() Aggregation[T] {
	return func(items []T) int64 {
		return int64(len(items))
	}
}

// Sum adds valueOf over the partition. A nil value counts as zero.
func Sum[T any](valueOf func(T) *int64) Aggregation[T] {
	return func(items []T) int64 {
		var total int64
		for _, item := range items {
			if v := valueOf(item); v != nil {
				total += *v
			}
		}
		return total
	}
}

// CountDistinct counts the distinct non-empty keys in the partition.
func CountDistinct[T any](keyOf func(T) string) Aggregation[T] {
	return func(items []T) int64 {
		seen := make(map[string]struct{}, len(items))
		for _, item := range items {
			if k := keyOf(item); k != "" {
				seen[k] = struct{}{}
			}
		}
		return int64(len(seen))
	}
}

// Partition names a subset of the input and how to reduce it. A nil Match
// selects every item.
type Partition[T any] struct {
	Name  string
	Match func(T) bool
	Agg   Aggregation[T]
}

type Scalar struct {
	Name  string
	Value int64
}

// Scalars keeps the partition order of the Reduce call.
type Scalars []Scalar

// Get returns the value of the named partition, or 0 when absent.
func (s Scalars) Get(name string) int64 {
	for _, sc := range s {
		if sc.Name == name {
			return sc.Value
		}
	}
	return 0
}

// Reduce computes one scalar per partition.
func Reduce[T any](items []T, partitions ...Partition[T]) Scalars {
	out := make(Scalars, 0, len(partitions))
	for _, p := range partitions {
		subset := items
		if p.Match != nil {
			subset = make([]T, 0, len(items))
			for _, item := range items {
				if p.Match(item) {
					subset = append(subset, item)
				}
			}
		}
		agg := p.Agg
		if agg == nil {
			agg = Count[T]()
		}
		out = append(out, Scalar{Name: p.Name, Value: agg(subset)})
	}
	return out
}
