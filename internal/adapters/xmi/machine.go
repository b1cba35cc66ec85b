// Package xmi reads installed release units from an AMX machine model.
package xmi

import (
	"fmt"
	"os"

	"github.com/bnema/amxbpm-admin-cli/internal/adapters/xmlrecord"
	"github.com/bnema/amxbpm-admin-cli/internal/domain"
)

const (
	DefaultMachineModel = "/produits/tibco/amx_home/tools/machinemodel/shared/1.0.0/machine.xmi"
	OracleJDBCFeature   = "com.tibco.tpshell.oracle.jdbc.feature"

	nsMachineModel = "http://xsd.tns.tibco.com/corona/models/installation/machinemodel"
)

// ReleaseUnits lists the units of componentID installed in the model at
// path. Units without a version attribute are left out.
func ReleaseUnits(path, componentID string) ([]domain.ReleaseUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read machine model %s: %w", path, err)
	}
	return ParseReleaseUnits(data, componentID)
}

func ParseReleaseUnits(data []byte, componentID string) ([]domain.ReleaseUnit, error) {
	doc, err := xmlrecord.Parse(data, map[string]string{"machinemodel": nsMachineModel})
	if err != nil {
		return nil, err
	}

	records, err := doc.Records("/*/installations/releaseUnits",
		xmlrecord.Defaulted("component", "@componentID", ""),
		xmlrecord.Defaulted("version", "@version", ""),
	)
	if err != nil {
		return nil, fmt.Errorf("parse release units: %w", err)
	}

	units := make([]domain.ReleaseUnit, 0, len(records))
	for _, r := range records {
		if r.Get("component") != componentID || r.Get("version") == "" {
			continue
		}
		units = append(units, domain.ReleaseUnit{ComponentID: r.Get("component"), Version: r.Get("version")})
	}
	return units, nil
}
