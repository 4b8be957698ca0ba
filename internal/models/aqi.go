package models

// AQICategory describes one band of the Air Quality Index scale.
type AQICategory struct {
	Label              string `json:"label"`
	Range              string `json:"range"`
	Upper              int    `json:"upper"` // inclusive; -1 for the open top band
	Description        string `json:"description"`
	HealthImplications string `json:"healthImplications"`
}

// AQICategories is the scale from best to worst
var AQICategories = []AQICategory{
	{
		Label:              "Good",
		Range:              "0-50",
		Upper:              50,
		Description:        "Air quality is satisfactory, and air pollution poses little or no risk.",
		HealthImplications: "Air quality is considered satisfactory, and air pollution poses little or no risk.",
	},
	{
		Label:              "Moderate",
		Range:              "51-100",
		Upper:              100,
		Description:        "Air quality is acceptable. However, there may be a risk for some people, particularly those who are unusually sensitive to air pollution.",
		HealthImplications: "Active children and adults, and people with respiratory disease, such as asthma, should limit prolonged outdoor exertion.",
	},
	{
		Label:              "Unhealthy for Sensitive Groups",
		Range:              "101-150",
		Upper:              150,
		Description:        "Members of sensitive groups may experience health effects. The general public is less likely to be affected.",
		HealthImplications: "People with heart or lung disease, older adults, and children should reduce prolonged or heavy exertion.",
	},
	{
		Label:              "Unhealthy",
		Range:              "151-200",
		Upper:              200,
		Description:        "Some members of the general public may experience health effects; members of sensitive groups may experience more serious health effects.",
		HealthImplications: "Everyone should limit prolonged outdoor exertion.",
	},
	{
		Label:              "Very Unhealthy",
		Range:              "201-300",
		Upper:              300,
		Description:        "Health alert: The risk of health effects is increased for everyone.",
		HealthImplications: "Everyone should avoid outdoor activity.",
	},
	{
		Label:              "Hazardous",
		Range:              "301+",
		Upper:              -1,
		Description:        "Health warning of emergency conditions: everyone is more likely to be affected.",
		HealthImplications: "Health warnings of emergency conditions. The entire population is more likely to be affected.",
	},
}

// ClassifyAQI returns the category an AQI value falls in.
// Negative values (the simulator does not clamp) count as Good.
func ClassifyAQI(aqi int) AQICategory {
	for _, c := range AQICategories {
		if c.Upper >= 0 && aqi <= c.Upper {
			return c
		}
	}
	return AQICategories[len(AQICategories)-1]
}
