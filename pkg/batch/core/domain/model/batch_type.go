package model

// Batch types produced by the notebooks of stages 03 to 05.
const (
	BatchTypeEDMCreation               = "EDM Creation"
	BatchTypePortfolioCreation         = "Portfolio Creation"
	BatchTypeMRIImport                 = "MRI Import"
	BatchTypeCreateReinsuranceTreaties = "Create Reinsurance Treaties"
	BatchTypeEDMDBUpgradeVersion       = "EDM DB Upgrade Version"
	BatchTypeGeoHaz                    = "GeoHaz"
	BatchTypePortfolioMapping          = "Portfolio Mapping"
	BatchTypeAnalysis                  = "Analysis"
	BatchTypeGrouping                  = "Grouping"
	BatchTypeGroupingRollup            = "Grouping Rollup"
	BatchTypeExportToRDM               = "Export to RDM"

	// BatchTypeDefault passes the master configuration through as a single job.
	BatchTypeDefault = "Default"
)
