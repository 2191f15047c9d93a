package main

import "math"

// Statutory useful lives in years
var statutoryLife = map[Structure]int{
	StructureRC:         47,
	StructureSteel:      34,
	StructureWood:       22,
	StructureSteelLight: 27,
}

// EquipmentLife is the useful life of building equipment when new
const EquipmentLife = 15

// StatutoryLife returns the useful life for a structure. Unknown structures
// are treated as reinforced concrete.
func StatutoryLife(s Structure) int {
	if life, ok := statutoryLife[s]; ok {
		return life
	}
	return statutoryLife[StructureRC]
}

// usedLife applies the simplified rule for second-hand assets
func usedLife(life, age int) int {
	if age >= life {
		return max(int(math.Floor(float64(life)*0.2)), 2)
	}
	return int(math.Floor(float64(life-age) + float64(age)*0.2))
}

// UsefulLife returns the depreciation period for the building body
func UsefulLife(s Structure, isUsed bool, buildingAge int) int {
	life := StatutoryLife(s)
	if !isUsed {
		return life
	}
	return usedLife(life, buildingAge)
}

// equipmentUsefulLife returns the equipment life. For used properties the
// wood life is run through the used rule with the age capped at 15.
func equipmentUsefulLife(isUsed bool, buildingAge int) int {
	if !isUsed {
		return EquipmentLife
	}
	return usedLife(StatutoryLife(StructureWood), min(buildingAge, EquipmentLife))
}

// DepreciationInfo is a straight-line schedule split into building and equipment
type DepreciationInfo struct {
	BuildingBasis   float64 `json:"building_basis"`
	EquipmentBasis  float64 `json:"equipment_basis"`
	BuildingAnnual  float64 `json:"building_annual"`
	EquipmentAnnual float64 `json:"equipment_annual"`
	BuildingLife    int     `json:"building_life"`
	EquipmentLife   int     `json:"equipment_life"`
}

// CalculateDepreciation splits buildingCost by equipmentRatio and computes
// floored annual straight-line amounts for each part
func CalculateDepreciation(s Structure, buildingCost, equipmentRatio float64, isUsed bool, buildingAge int) DepreciationInfo {
	info := DepreciationInfo{
		BuildingBasis:  buildingCost * (1 - equipmentRatio),
		EquipmentBasis: buildingCost * equipmentRatio,
		BuildingLife:   UsefulLife(s, isUsed, buildingAge),
		EquipmentLife:  equipmentUsefulLife(isUsed, buildingAge),
	}

	if info.BuildingLife > 0 {
		info.BuildingAnnual = math.Floor(info.BuildingBasis / float64(info.BuildingLife))
	}
	if equipmentRatio > 0 && info.EquipmentLife > 0 {
		info.EquipmentAnnual = math.Floor(info.EquipmentBasis / float64(info.EquipmentLife))
	}
	return info
}

// ForYear returns total depreciation for a 1-based projection year
func (d DepreciationInfo) ForYear(year int) float64 {
	total := 0.0
	if year >= 1 && year <= d.BuildingLife {
		total += d.BuildingAnnual
	}
	if year >= 1 && year <= d.EquipmentLife {
		total += d.EquipmentAnnual
	}
	return total
}

// Accumulated returns depreciation taken from year 1 through throughYear
func (d DepreciationInfo) Accumulated(throughYear int) float64 {
	total := 0.0
	for y := 1; y <= throughYear; y++ {
		total += d.ForYear(y)
	}
	return total
}
