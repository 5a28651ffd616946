package utils

// PartitionMap splits an index range [0, MaxIndex) into ParallelDegree
// contiguous partitions. Each partition is owned by one worker; cell loops
// are domain-decomposed with it and per-partition partial results are
// reduced afterwards.
type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	var (
		Npart            = pm.MaxIndex / pm.ParallelDegree
		remainder        = pm.MaxIndex % pm.ParallelDegree
		additionalInLast int
	)
	if threadNum == pm.ParallelDegree-1 {
		additionalInLast = remainder
	}
	bucket[0] = threadNum * Npart
	bucket[1] = bucket[0] + Npart + additionalInLast
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketDimension(bucketNum int) (kMax int) {
	var (
		k1, k2 = pm.GetBucketRange(bucketNum)
	)
	kMax = k2 - k1
	return
}

// SumReduce accumulates per-partition partial sums in partition order. The
// result is deterministic for a fixed partition count (order-independent at
// the semantic level, exact up to floating point associativity).
func SumReduce(partials []float64) (sum float64) {
	for _, val := range partials {
		sum += val
	}
	return
}
