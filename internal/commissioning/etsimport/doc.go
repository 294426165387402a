// Package etsimport reads KNX ETS project files (.knxproj).
//
// ETS (Engineering Tool Software) is the standard configuration tool for KNX
// installations. A .knxproj file is a ZIP archive; for an unprotected project
// it contains, per project directory "P-XXXX":
//
//   - project.xml: ProjectInformation (name, group address style)
//   - 0.xml:       the installation (group address ranges, building locations)
//
// This package extracts those two documents and reduces them to plain trees
// (ProjectInfo, GroupRange, Space). It performs no interpretation beyond
// parsing attributes: datapoint normalisation, address formatting and
// room/floor inference happen in the model package.
//
// # Usage
//
//	reader := etsimport.NewReader()
//	project, err := reader.ReadFile("house.knxproj")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(project.Info.Name, project.Info.GroupAddressStyle)
//
// A section that is absent from the archive is left nil in Project; callers
// decide whether that is fatal.
//
// Password protected (ETS6 encrypted) projects are not supported.
package etsimport
