package roga

import (
	"github.com/kttn8769/relion-optics-group-assigner/internal/finder"
	"github.com/kttn8769/relion-optics-group-assigner/internal/membership"
	"github.com/kttn8769/relion-optics-group-assigner/internal/opticsgroup"
	"github.com/kttn8769/relion-optics-group-assigner/internal/star"
)

type (
	// Membership maps micrographs to optics groups.
	Membership = membership.Table
	// MembershipRow is one micrograph of a Membership.
	MembershipRow = membership.Row
	// Document is a particle STAR file.
	Document = star.Document
	// Table is one loop block of a STAR file.
	Table = star.Table
	// Result holds the output data_optics and data_particles tables.
	Result = opticsgroup.Result
	// GroupCount is the number of particles in one optics group.
	GroupCount = opticsgroup.GroupCount
	// MTFEntry is the MTF calibration of one filelist.
	MTFEntry = finder.MTFEntry
	// Acquisition is the metadata encoded in a micrograph filename.
	Acquisition = finder.Acquisition
	// NameParser extracts acquisition metadata from a micrograph key.
	NameParser = finder.NameParser
)

var (
	ReadStar        = star.ReadFile
	WriteStar       = star.WriteFile
	ReadMembership  = membership.ReadFile
	WriteMembership = membership.WriteFile
	ReadMTFInfo     = finder.ReadMTFInfo
	ParseEPUName    = finder.ParseEPUName
)
