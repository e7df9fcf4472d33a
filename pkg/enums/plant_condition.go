package enums

import "fmt"

// PlantCondition identifies a diagnosis outcome produced by the classifier.
type PlantCondition string

const (
	PlantConditionHealthy          PlantCondition = "healthy"
	PlantConditionLeafSpot         PlantCondition = "leaf_spot"
	PlantConditionPowderyMildew    PlantCondition = "powdery_mildew"
	PlantConditionRootRot          PlantCondition = "root_rot"
	PlantConditionAphidInfestation PlantCondition = "aphid_infestation"
)

var validPlantConditions = []PlantCondition{
	PlantConditionHealthy,
	PlantConditionLeafSpot,
	PlantConditionPowderyMildew,
	PlantConditionRootRot,
	PlantConditionAphidInfestation,
}

// PlantConditions returns the classifier's output space in catalog order.
func PlantConditions() []PlantCondition {
	out := make([]PlantCondition, len(validPlantConditions))
	copy(out, validPlantConditions)
	return out
}

// String implements fmt.Stringer.
func (c PlantCondition) String() string {
	return string(c)
}

// IsValid reports whether the value is a known PlantCondition.
func (c PlantCondition) IsValid() bool {
	for _, candidate := range validPlantConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParsePlantCondition converts raw input into a PlantCondition.
func ParsePlantCondition(value string) (PlantCondition, error) {
	for _, candidate := range validPlantConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plant condition %q", value)
}
