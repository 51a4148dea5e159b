package registry

// Default builds the production registry covering the three AgriStack
// source tables.
func Default() *Registry {
	indicators := []Indicator{
		{
			Key: "crop_area", Table: TableCropArea, Column: "crop_area_approved",
			Title: "Approved Crop Area", Unit: "Hectares",
			Keywords: []string{"crop area", "approved area", "crop status", "cultivation", "cultivated", "area"},
		},
		{
			Key: "crop_area_closed", Table: TableCropArea, Column: "crop_area_closed",
			Title: "Closed Crop Area", Unit: "Hectares",
			Keywords: []string{"closed area", "crop closed", "closed crop"},
		},
		{
			Key: "pending_validation", Table: TableCropArea, Column: "pending",
			Title: "Crops Pending Validation", Unit: "Hectares", Derived: true,
			Keywords: []string{"pending validation", "pending approval", "not approved", "awaiting approval", "pending crops", "under validation", "validation pending"},
		},
		{
			Key: "farmers", Table: TableCropArea, Column: "no_of_farmers",
			Title: "Registered Farmers", Unit: "Farmers",
			Keywords: []string{"farmer", "farmers", "farmer count", "number of farmers", "total farmers"},
		},
		{
			Key: "plots", Table: TableCropArea, Column: "no_of_plots",
			Title: "Number of Plots", Unit: "Plots",
			Keywords: []string{"plots recorded", "crop plots", "number of plots"},
		},
		{
			Key: "total_plots", Table: TableAggregate, Column: "total_plots",
			Title: "Total Plots", Unit: "Plots",
			Keywords: []string{"total plots", "all plots"},
		},
		{
			Key: "assigned_plots", Table: TableAggregate, Column: "total_assigned_plots",
			Title: "Assigned Plots for Survey", Unit: "Plots",
			Keywords: []string{"assigned plots", "plots assigned", "assigned for survey"},
		},
		{
			Key: "surveyed_plots", Table: TableAggregate, Column: "total_plots_surveyed",
			Title: "Plots Surveyed", Unit: "Plots",
			Keywords: []string{"surveyed plots", "plots surveyed", "survey completed", "surveyed so far", "survey progress", "survey status"},
		},
		{
			Key: "unsurveyed_plots", Table: TableAggregate, Column: "total_plots_unable_to_survey",
			Title: "Unable to Survey Plots", Unit: "Plots",
			Keywords: []string{"unable to survey", "unsurveyed", "not surveyed", "unable"},
		},
		{
			Key: "survey_approved", Table: TableAggregate, Column: "total_survey_approved",
			Title: "Surveys Approved", Unit: "Surveys",
			Keywords: []string{"survey approved", "approved surveys", "approval"},
		},
		{
			Key: "survey_under_review", Table: TableAggregate, Column: "total_survey_under_review",
			Title: "Surveys Under Review", Unit: "Surveys",
			Keywords: []string{"under review", "review", "pending review"},
		},
		{
			Key: "today_survey", Table: TableAggregate, Column: "total_today_survey",
			Title: "Today's Survey Count", Unit: "Surveys",
			Keywords: []string{"today survey", "today's count", "daily survey"},
		},
		{
			Key: "surveyors", Table: TableAggregate, Column: "total_no_of_surveyors",
			Title: "Number of Surveyors", Unit: "Surveyors",
			Keywords: []string{"surveyors", "surveyor count"},
		},
		{
			Key: "surveyed_area", Table: TableCultivated, Column: "total_surveyed_area",
			Title: "Total Surveyed Area", Unit: "Hectares",
			Keywords: []string{"surveyed area", "agricultural area", "surveyed agricultural", "survey summary", "overall survey", "total survey area", "survey area"},
		},
		{
			Key: "surveyable_area", Table: TableCultivated, Column: "total_surveyable_area",
			Title: "Total Surveyable Area", Unit: "Hectares",
			Keywords: []string{"surveyable area", "surveyable"},
		},
		{
			Key: "fallow_area", Table: TableCultivated, Column: "total_fallow_area",
			Title: "Fallow Area", Unit: "Hectares",
			Keywords: []string{"fallow", "fallow area", "fallow land"},
		},
		{
			Key: "na_area", Table: TableCultivated, Column: "total_na_area",
			Title: "NA Area", Unit: "Hectares",
			Keywords: []string{"na area", "not available", "na"},
		},
		{
			Key: "harvested_area", Table: TableCultivated, Column: "total_harvested_area",
			Title: "Harvested Area", Unit: "Hectares",
			Keywords: []string{"harvested", "harvest area", "harvested area"},
		},
		{
			Key: "irrigated_area", Table: TableCultivated, Column: "total_irrigated_area",
			Title: "Irrigated Area", Unit: "Hectares",
			Keywords: []string{"irrigated", "irrigation", "irrigated area"},
		},
		{
			Key: "unirrigated_area", Table: TableCultivated, Column: "total_unirrigated_area",
			Title: "Unirrigated Area", Unit: "Hectares",
			Keywords: []string{"unirrigated", "rainfed", "unirrigated area"},
		},
		{
			Key: "perennial_area", Table: TableCultivated, Column: "total_perennial_crop_area",
			Title: "Perennial Crop Area", Unit: "Hectares",
			Keywords: []string{"perennial", "perennial crop"},
		},
		{
			Key: "biennial_area", Table: TableCultivated, Column: "total_biennial_crop_area",
			Title: "Biennial Crop Area", Unit: "Hectares",
			Keywords: []string{"biennial", "biennial crop"},
		},
		{
			Key: "seasonal_area", Table: TableCultivated, Column: "total_seasonal_crop_area",
			Title: "Seasonal Crop Area", Unit: "Hectares",
			Keywords: []string{"seasonal", "seasonal crop"},
		},
	}

	dimensions := []Dimension{
		{Key: "district", Column: ColumnDistrict, Title: "District", Keywords: []string{"district", "districts"}},
		{Key: "season", Column: ColumnSeason, Title: "Season", Keywords: []string{"season", "seasons"}},
		{Key: "crop", Column: ColumnCrop, Title: "Crop", Keywords: []string{"crop", "crops"}},
		{Key: "year", Column: ColumnYear, Title: "Year", Keywords: []string{"yearly", "annual"}, Ordinal: true},
		{Key: "irrigation", Column: "irrigation_source", Title: "Irrigation Source", Keywords: []string{"irrigation source", "water source"}},
		{Key: "village", Column: "village_lgd_code", Title: "Village", Keywords: []string{"village", "villages"}},
	}

	comparisons := []Comparison{
		{
			Key: "irrigated_vs_unirrigated", Title: "Irrigated vs Unirrigated Area", Unit: "Hectares",
			Keywords: []string{"irrigated vs unirrigated", "irrigated and unirrigated", "irrigated versus unirrigated", "compare irrigated", "irrigation comparison"},
			Legs: [2]ComparisonLeg{
				{Label: "Irrigated", Table: TableCultivated, Column: "total_irrigated_area"},
				{Label: "Unirrigated", Table: TableCultivated, Column: "total_unirrigated_area"},
			},
		},
		{
			Key: "assigned_vs_surveyed", Title: "Assigned vs Surveyed Plots", Unit: "Plots",
			Keywords: []string{"assigned vs surveyed", "assigned and surveyed", "assign vs survey", "assigned versus surveyed"},
			Legs: [2]ComparisonLeg{
				{Label: "Assigned", Table: TableAggregate, Column: "total_assigned_plots"},
				{Label: "Surveyed", Table: TableAggregate, Column: "total_plots_surveyed"},
			},
		},
		{
			Key: "approved_vs_closed", Title: "Approved vs Closed Crop Area", Unit: "Hectares",
			Keywords: []string{"approved vs closed", "approved and closed", "approved versus closed"},
			Legs: [2]ComparisonLeg{
				{Label: "Approved", Table: TableCropArea, Column: "crop_area_approved"},
				{Label: "Closed", Table: TableCropArea, Column: "crop_area_closed"},
			},
		},
		{
			Key: "surveyable_vs_surveyed", Title: "Surveyable vs Surveyed Area", Unit: "Hectares",
			Keywords: []string{"surveyable vs surveyed", "surveyable and surveyed"},
			Legs: [2]ComparisonLeg{
				{Label: "Surveyable", Table: TableCultivated, Column: "total_surveyable_area"},
				{Label: "Surveyed", Table: TableCultivated, Column: "total_surveyed_area"},
			},
		},
		{
			Key: "rabi_vs_kharif", Title: "Rabi vs Kharif Crop Area", Unit: "Hectares",
			Keywords: []string{"rabi vs kharif", "rabi and kharif", "kharif vs rabi", "kharif and rabi", "rabi versus kharif", "compare rabi", "compare kharif"},
			Legs: [2]ComparisonLeg{
				{Label: "Rabi", Table: TableCropArea, Column: "crop_area_approved", SeasonEq: "Rabi"},
				{Label: "Kharif", Table: TableCropArea, Column: "crop_area_approved", SeasonEq: "Kharif"},
			},
		},
		{
			Key: "fallow_vs_cultivated", Title: "Fallow vs Cultivated Area", Unit: "Hectares",
			Keywords: []string{"fallow vs cultivated", "fallow and cultivated"},
			Legs: [2]ComparisonLeg{
				{Label: "Fallow", Table: TableCultivated, Column: "total_fallow_area"},
				{Label: "Cultivated", Table: TableCultivated, Column: "total_surveyed_area"},
			},
		},
		// Cross-source pair: the legs live in different tables, so the
		// snapshot backend resolves it through the keyed outer join.
		{
			Key: "surveyed_vs_approved_area", Title: "Surveyed vs Approved Crop Area", Unit: "Hectares",
			Keywords: []string{"surveyed vs approved", "surveyed and approved area", "surveyed versus approved"},
			Legs: [2]ComparisonLeg{
				{Label: "Surveyed", Table: TableCultivated, Column: "total_surveyed_area"},
				{Label: "Approved", Table: TableCropArea, Column: "crop_area_approved"},
			},
		},
	}

	return New(indicators, dimensions, comparisons, "crop_area")
}

// CropNames is the closed crop vocabulary used for filter detection.
var CropNames = []string{
	"wheat", "rice", "maize", "corn", "sorghum", "jowar", "bajra", "pearl millet",
	"chickpea", "gram", "chana", "pigeon pea", "tur", "arhar", "lentil", "moong", "urad",
	"sugarcane", "cotton", "soybean", "groundnut", "mustard", "sunflower", "safflower",
	"onion", "potato", "tomato", "brinjal", "chilli", "turmeric", "ginger",
	"banana", "mango", "orange", "grapes", "pomegranate", "guava", "papaya",
	"ragi", "barley", "oats", "sesame", "castor",
}

// SeasonNames is the closed season vocabulary.
var SeasonNames = []string{"kharif", "rabi", "summer", "zaid"}
