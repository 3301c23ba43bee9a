// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "math"

// NormalizeVector scales v to unit length. A zero vector yields a zero vector
// of the same dimension.
func NormalizeVector(v []float32) []float32 {
	var magnitude float64
	for _, val := range v {
		magnitude += float64(val) * float64(val)
	}
	magnitude = math.Sqrt(magnitude)

	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}
	for i, val := range v {
		result[i] = float32(float64(val) / magnitude)
	}
	return result
}

// SquaredEuclidean returns the squared L2 distance between a and b.
// Vectors of different length are compared over the shorter prefix and the
// remainder of the longer one counts in full.
func SquaredEuclidean(a, b []float32) float64 {
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	var sum float64
	for i := range short {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	for _, v := range long[len(short):] {
		sum += float64(v) * float64(v)
	}
	return sum
}

// SimilarityFromDistance maps a non-negative distance onto (0,1] with
// 1/(1+d). Negative or NaN distances are treated as 0 and +Inf as 0 similarity.
// Every place that surfaces a distance as a score goes through here.
func SimilarityFromDistance(distance float64) float64 {
	if math.IsNaN(distance) || distance < 0 {
		distance = 0
	}
	if math.IsInf(distance, 1) {
		return 0
	}
	return 1 / (1 + distance)
}
