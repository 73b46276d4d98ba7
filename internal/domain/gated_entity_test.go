package domain

import "testing"

func TestGatedEntityValidate(t *testing.T) {
	valid := GatedEntity{
		ID:             "unit_2",
		Kind:           EntityKindUnit,
		CostType:       CostTypePoints,
		RequiredPoints: 1000,
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalid := valid
	invalid.ID = ""
	if err := invalid.Validate(); err != ErrEmptyEntityID {
		t.Errorf("Expected error %v, got %v", ErrEmptyEntityID, err)
	}

	invalid = valid
	invalid.Kind = EntityKind("poster")
	if err := invalid.Validate(); err != ErrInvalidEntityKind {
		t.Errorf("Expected error %v, got %v", ErrInvalidEntityKind, err)
	}

	invalid = valid
	invalid.CostType = CostType("coins")
	if err := invalid.Validate(); err != ErrInvalidCostType {
		t.Errorf("Expected error %v, got %v", ErrInvalidCostType, err)
	}

	invalid = valid
	invalid.RequiredPoints = -1
	if err := invalid.Validate(); err != ErrNegativeThreshold {
		t.Errorf("Expected error %v, got %v", ErrNegativeThreshold, err)
	}

	invalid = valid
	invalid.RequiredGems = 10
	if err := invalid.Validate(); err != ErrMixedEntityCost {
		t.Errorf("Expected error %v, got %v", ErrMixedEntityCost, err)
	}
}

func TestGatedEntityIsDefault(t *testing.T) {
	defaultUnit := GatedEntity{ID: "unit_1", Kind: EntityKindUnit, CostType: CostTypePoints}
	if !defaultUnit.IsDefault() {
		t.Error("Zero-threshold entity should be default")
	}

	gated := GatedEntity{ID: "unit_2", Kind: EntityKindUnit, CostType: CostTypePoints, RequiredPoints: 1000}
	if gated.IsDefault() {
		t.Error("Point-gated entity should not be default")
	}
}
