// Package opticsgroup writes optics group assignments into particle tables
// and derives the data_optics table that goes with them.
package opticsgroup

const (
	ColMicrographName = "_rlnMicrographName"
	ColOpticsGroup    = "_rlnOpticsGroup"

	ColOpticsGroupName         = "_rlnOpticsGroupName"
	ColMtfFileName             = "_rlnMtfFileName"
	ColMicrographOrigPixelSize = "_rlnMicrographOriginalPixelSize"
	ColVoltage                 = "_rlnVoltage"
	ColSphericalAberration     = "_rlnSphericalAberration"
	ColAmplitudeContrast       = "_rlnAmplitudeContrast"
	ColImagePixelSize          = "_rlnImagePixelSize"
	ColImageSize               = "_rlnImageSize"
	ColImageDimensionality     = "_rlnImageDimensionality"

	ColMagnification     = "_rlnMagnification"
	ColDetectorPixelSize = "_rlnDetectorPixelSize"

	ColOriginX      = "_rlnOriginX"
	ColOriginY      = "_rlnOriginY"
	ColOriginXAngst = "_rlnOriginXAngst"
	ColOriginYAngst = "_rlnOriginYAngst"
)

// legacyOpticsColumns are the per-particle optics fields of RELION <= 3.0
// files, in the order they are checked.
var legacyOpticsColumns = []string{
	ColMagnification,
	ColDetectorPixelSize,
	ColAmplitudeContrast,
	ColSphericalAberration,
	ColVoltage,
}

// opticsValueColumns follow the name, id and MTF columns in data_optics.
var opticsValueColumns = []string{
	ColVoltage,
	ColSphericalAberration,
	ColAmplitudeContrast,
	ColImagePixelSize,
	ColImageSize,
	ColImageDimensionality,
}
