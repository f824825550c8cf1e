package voice

import "math"

// silenceFloorDB is reported for an all-zero batch so it always falls below
// any sensible threshold.
const silenceFloorDB = -100.0

// batchDecibels computes the RMS level of one sample batch in dBFS, where 0
// is full scale.
func batchDecibels(samples []int16) float64 {
	if len(samples) == 0 {
		return silenceFloorDB
	}

	var sum float64
	for _, s := range samples {
		normalized := float64(s) / 32768.0
		sum += normalized * normalized
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms == 0 {
		return silenceFloorDB
	}

	db := 20 * math.Log10(rms)
	if db < silenceFloorDB {
		return silenceFloorDB
	}
	return db
}
