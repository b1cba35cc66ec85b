package amx

const (
	EnvService           = "EnvService"
	HostService          = "HostService"
	NodeService          = "NodeService"
	ApplicationService   = "ApplicationService"
	ApplicationUIService = "ApplicationUIService"
	DAAService           = "DAAService"
	nsSOAPEnvelope       = "http://schemas.xmlsoap.org/soap/envelope/"
	nsXSI                = "http://www.w3.org/2001/XMLSchema-instance"
	nsTypes              = "http://types.core.api.admin.amf.tibco.com/xsd"
	nsReference          = "http://reference.api.admin.amf.tibco.com/xsd"
	nsApplicationTypes   = "http://application.amx.api.admin.amf.tibco.com/xsd"
	nsComponentTypes     = "http://component.amx.api.admin.amf.tibco.com/xsd"
)

// serviceNamespace names the operation namespace of a service and the schema
// namespace of the types it returns.
type serviceNamespace struct {
	prefix     string
	operations string
	types      string
}

var serviceNamespaces = map[string]serviceNamespace{
	EnvService: {
		prefix:     "env",
		operations: "http://env.amx.api.admin.amf.tibco.com",
		types:      "http://env.amx.api.admin.amf.tibco.com/xsd",
	},
	HostService: {
		prefix:     "host",
		operations: "http://host.amx.api.admin.amf.tibco.com",
		types:      "http://host.amx.api.admin.amf.tibco.com/xsd",
	},
	NodeService: {
		prefix:     "node",
		operations: "http://node.amx.api.admin.amf.tibco.com",
		types:      "http://node.amx.api.admin.amf.tibco.com/xsd",
	},
	ApplicationService: {
		prefix:     "app",
		operations: "http://application.amx.api.admin.amf.tibco.com",
		types:      nsApplicationTypes,
	},
	ApplicationUIService: {
		prefix:     "ui",
		operations: "http://ui.application.amx.api.admin.amf.tibco.com",
		types:      "http://ui.application.amx.api.admin.amf.tibco.com/xsd",
	},
	DAAService: {
		prefix:     "daa",
		operations: "http://daa.amx.api.admin.amf.tibco.com",
		types:      "http://daa.amx.api.admin.amf.tibco.com/xsd",
	},
}

// Namespaces returns the XPath prefix table for responses of service.
// "ns" is the operation namespace and "ax" the service's schema namespace;
// the shared schemas are always present.
func Namespaces(service string) map[string]string {
	table := map[string]string{
		"soapenv": nsSOAPEnvelope,
		"xsi":     nsXSI,
		"types":   nsTypes,
		"ref":     nsReference,
		"appx":    nsApplicationTypes,
		"comp":    nsComponentTypes,
	}

	if ns, ok := serviceNamespaces[service]; ok {
		table["ns"] = ns.operations
		table["ax"] = ns.types
	}

	return table
}
