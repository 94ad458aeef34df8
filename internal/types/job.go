// Package types provides type definitions for the structured data exchanged
// between the HR workflow stages.
package types

import (
	"math"

	"github.com/go-playground/validator/v10"
)

// WeightTolerance is how far the sum of requirement weights may drift from 1.0
// before it is reported.
const WeightTolerance = 0.01

// JobFields are the HR-supplied inputs for drafting a job description.
type JobFields struct {
	JobName        string `json:"jobName" validate:"required,max=200"`
	JobDescription string `json:"jobDescription" validate:"required"`
	MainPoint      string `json:"mainPoint" validate:"required"`
	ExtraPoint     string `json:"extraPoint,omitempty"`
	BonusPoint     string `json:"bonusPoint,omitempty"`
}

// Validate validates the JobFields using the validator.
func (f *JobFields) Validate() error {
	validate := validator.New()
	return validate.Struct(f)
}

// Requirement is one weighted criterion extracted from a job description.
type Requirement struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight" validate:"gte=0,lte=1"`
}

// JobRequirements is the structured rubric for one job.
type JobRequirements struct {
	JobTitle     string        `json:"jobTitle"`
	Requirements []Requirement `json:"requirements" validate:"required,min=1,dive"`
}

// Validate validates the JobRequirements using the validator.
func (r *JobRequirements) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// WeightSum returns the sum of all requirement weights.
func (r *JobRequirements) WeightSum() float64 {
	var sum float64
	for _, req := range r.Requirements {
		sum += req.Weight
	}
	return sum
}

// WeightsBalanced reports whether the weights sum to 1.0 within WeightTolerance.
func (r *JobRequirements) WeightsBalanced() bool {
	return math.Abs(r.WeightSum()-1.0) <= WeightTolerance
}

// JDFields are the key fields pulled out of a free-form job description.
type JDFields struct {
	Title        string   `json:"title,omitempty"`
	Department   string   `json:"department,omitempty"`
	Location     string   `json:"location,omitempty"`
	Description  string   `json:"description,omitempty"`
	Requirements string   `json:"requirements,omitempty"`
	SalaryRange  string   `json:"salaryRange,omitempty"`
	Skills       []string `json:"skills,omitempty"`
	Experience   string   `json:"experience,omitempty"`
	Education    string   `json:"education,omitempty"`
	CompanySize  string   `json:"companySize,omitempty"`
	Industry     string   `json:"industry,omitempty"`
}
