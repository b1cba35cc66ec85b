package amx

import (
	"bytes"
	"encoding/xml"
	"strconv"
)

const allHostsMachineID = "-1"

// ServiceCall is one SOAP request: the service endpoint, the action sent in
// the SOAPAction header and the full envelope.
type ServiceCall struct {
	Endpoint    string
	Action      string
	Body        string
	ContentType string
}

func newCall(service, action, inner string) ServiceCall {
	return ServiceCall{
		Endpoint: service,
		Action:   action,
		Body:     envelope(service, inner),
	}
}

func envelope(service, inner string) string {
	ns := serviceNamespaces[service]

	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<soapenv:Envelope xmlns:soapenv="` + nsSOAPEnvelope + `"`)
	if ns.prefix != "" {
		b.WriteString(` xmlns:` + ns.prefix + `="` + ns.operations + `"`)
	}
	b.WriteString(` xmlns:xsd="` + nsTypes + `">`)
	b.WriteString(`<soapenv:Header/><soapenv:Body>`)
	b.WriteString(inner)
	b.WriteString(`</soapenv:Body></soapenv:Envelope>`)
	return b.String()
}

func escape(value string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(value))
	return b.String()
}

func identifier(id, name string) string {
	return "<xsd:id>" + escape(id) + "</xsd:id><xsd:name>" + escape(name) + "</xsd:name>"
}

func getAllEnvCall() ServiceCall {
	return newCall(EnvService, "getAllEnv", "")
}

func getHostsOnMachineCall() ServiceCall {
	return newCall(HostService, "getHostsOnMachine",
		"<host:getHostsOnMachine><host:machineid>"+identifier(allHostsMachineID, "All")+
			"</host:machineid></host:getHostsOnMachine>")
}

func getNodesInEnvironmentCall(envID, envName string, perPage int) ServiceCall {
	return newCall(NodeService, "getNodesInEnvironment",
		"<node:getNodesInEnvironment><node:envIdentifier>"+identifier(envID, envName)+
			"</node:envIdentifier><node:input><xsd:filterCriteria></xsd:filterCriteria>"+
			"<xsd:itemsPerPage>"+strconv.Itoa(perPage)+"</xsd:itemsPerPage>"+
			"<xsd:requestedPage>1</xsd:requestedPage></node:input></node:getNodesInEnvironment>")
}

func getApplicationRollupDetailsCall(appID string) ServiceCall {
	return newCall(ApplicationService, "getApplicationRollupDetails",
		"<app:getApplicationRollupDetails><app:applicationIds>"+identifier(appID, "")+
			"</app:applicationIds></app:getApplicationRollupDetails>")
}

func getApplicationViewDetailsCall(envID string) ServiceCall {
	return newCall(ApplicationService, "getApplicationViewDetails",
		"<app:getApplicationViewDetails><app:envId>"+identifier(envID, "")+
			"</app:envId></app:getApplicationViewDetails>")
}

func getAppFolderViewCall(folderID, folderName string) ServiceCall {
	return newCall(ApplicationUIService, "getAppFolderView",
		"<ui:getAppFolderView><ui:folderId>"+identifier(folderID, folderName)+
			"</ui:folderId></ui:getAppFolderView>")
}

func getApplicationsMappedToNodeCall(nodeID string) ServiceCall {
	return newCall(ApplicationService, "getApplicationsMappedToNode",
		"<app:getApplicationsMappedToNode><app:nodeId><xsd:id>"+escape(nodeID)+
			"</xsd:id></app:nodeId></app:getApplicationsMappedToNode>")
}

func getApplicationSummaryByIDCall(appID string) ServiceCall {
	return newCall(ApplicationService, "getApplicationSummaryById",
		"<app:getApplicationSummaryById><app:applicationId><xsd:id>"+escape(appID)+
			"</xsd:id></app:applicationId></app:getApplicationSummaryById>")
}

func getAllUploadedDAACall() ServiceCall {
	return newCall(DAAService, "getAllUploadedDAA",
		"<daa:getAllUploadedDAA><daa:wsiCompliance>0</daa:wsiCompliance></daa:getAllUploadedDAA>")
}

func deleteDAASCall(daaID string) ServiceCall {
	return newCall(DAAService, "deleteDAAS",
		"<daa:deleteDAAS><daa:daaIds>"+escape(daaID)+"</daa:daaIds></daa:deleteDAAS>")
}
