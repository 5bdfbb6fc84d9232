package pricing

// DefaultCityRegions maps GSO province codes to macro regions for the
// standard rate tables. Provinces missing from the table classify as
// inter-region.
func DefaultCityRegions() map[int]string {
	return map[int]string{
		// North
		1:  "NORTH", // Hà Nội
		22: "NORTH", // Quảng Ninh
		24: "NORTH", // Bắc Giang
		26: "NORTH", // Vĩnh Phúc
		27: "NORTH", // Bắc Ninh
		30: "NORTH", // Hải Dương
		31: "NORTH", // Hải Phòng
		33: "NORTH", // Hưng Yên
		34: "NORTH", // Thái Bình
		36: "NORTH", // Nam Định
		37: "NORTH", // Ninh Bình
		// Central
		38: "CENTRAL", // Thanh Hóa
		40: "CENTRAL", // Nghệ An
		42: "CENTRAL", // Hà Tĩnh
		44: "CENTRAL", // Quảng Bình
		45: "CENTRAL", // Quảng Trị
		46: "CENTRAL", // Thừa Thiên Huế
		48: "CENTRAL", // Đà Nẵng
		49: "CENTRAL", // Quảng Nam
		51: "CENTRAL", // Quảng Ngãi
		52: "CENTRAL", // Bình Định
		56: "CENTRAL", // Khánh Hòa
		68: "CENTRAL", // Lâm Đồng
		// South
		70: "SOUTH", // Bình Phước
		72: "SOUTH", // Tây Ninh
		74: "SOUTH", // Bình Dương
		75: "SOUTH", // Đồng Nai
		77: "SOUTH", // Bà Rịa - Vũng Tàu
		79: "SOUTH", // TP Hồ Chí Minh
		80: "SOUTH", // Long An
		82: "SOUTH", // Tiền Giang
		83: "SOUTH", // Bến Tre
		86: "SOUTH", // Vĩnh Long
		89: "SOUTH", // An Giang
		92: "SOUTH", // Cần Thơ
	}
}

// StaticRegionClassifier classifies routes from an in-memory city-to-region
// table. Unknown cities fall back to INTER_REGION, the most expensive class.
type StaticRegionClassifier struct {
	cityRegions map[int]string
}

// NewStaticRegionClassifier creates a classifier from a city-to-region table
func NewStaticRegionClassifier(cityRegions map[int]string) *StaticRegionClassifier {
	return &StaticRegionClassifier{cityRegions: cityRegions}
}

// Classify resolves the route's region class
func (c *StaticRegionClassifier) Classify(originCityCode, destCityCode int) RegionClass {
	if originCityCode == destCityCode {
		return RegionIntraCity
	}

	originRegion, okOrigin := c.cityRegions[originCityCode]
	destRegion, okDest := c.cityRegions[destCityCode]
	if okOrigin && okDest && originRegion == destRegion {
		return RegionIntraRegion
	}

	return RegionInterRegion
}
