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


package tools

import (
	"context"
	"fmt"
)

// Prediction is an estimate of solar generation and economics.
// Energy figures are kWh, money is in 만원.
type Prediction struct {
	Location         string
	CapacityKW       float64
	AnnualKWh        int
	SummerMonthlyKWh int
	WinterMonthlyKWh int
	InstallCost      int
	Savings20Years   int
	PaybackYears     int
	Confidence       float64
}

// Predictor estimates generation for a system.
type Predictor interface {
	Predict(ctx context.Context, req PredictionRequest) (Prediction, error)
}

// Reference figures for a 5 kW residential system.
const (
	baselineCapacityKW = 5.0
	baselineAnnualKWh  = 6570
	baselineSummerKWh  = 750
	baselineWinterKWh  = 400
	baselineInstall    = 1500
	baselineSavings    = 1200
	baselinePayback    = 7
	baselineConfidence = 0.92
)

// BaselinePredictor scales reference figures linearly by capacity. Location
// does not change the estimate.
type BaselinePredictor struct{}

var _ Predictor = BaselinePredictor{}

// Predict returns the scaled reference estimate.
func (BaselinePredictor) Predict(ctx context.Context, req PredictionRequest) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	if req.CapacityKW <= 0 {
		return Prediction{}, fmt.Errorf("%w: %v", ErrInvalidCapacity, req.CapacityKW)
	}

	scale := req.CapacityKW / baselineCapacityKW
	return Prediction{
		Location:         req.Location,
		CapacityKW:       req.CapacityKW,
		AnnualKWh:        int(baselineAnnualKWh * scale),
		SummerMonthlyKWh: int(baselineSummerKWh * scale),
		WinterMonthlyKWh: int(baselineWinterKWh * scale),
		InstallCost:      int(baselineInstall * scale),
		Savings20Years:   int(baselineSavings * scale),
		PaybackYears:     baselinePayback,
		Confidence:       baselineConfidence,
	}, nil
}
