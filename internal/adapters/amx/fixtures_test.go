package amx

const envResponse = `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <ns:getAllEnvResponse xmlns:ns="http://env.amx.api.admin.amf.tibco.com" xmlns:ax278="http://types.core.api.admin.amf.tibco.com/xsd" xmlns:ax281="http://reference.api.admin.amf.tibco.com/xsd">
      <ns:return>
        <ax278:id>1</ax278:id>
        <ax278:name>SystemEnvironment</ax278:name>
        <ax281:description>System environment</ax281:description>
      </ns:return>
      <ns:return>
        <ax278:id>3</ax278:id>
        <ax278:name>BPMEnvironment</ax278:name>
      </ns:return>
    </ns:getAllEnvResponse>
  </soapenv:Body>
</soapenv:Envelope>`

const hostsResponse = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <ns:getHostsOnMachineResponse xmlns:ns="http://host.amx.api.admin.amf.tibco.com" xmlns:ax2242="http://host.amx.api.admin.amf.tibco.com/xsd" xmlns:ax2244="http://types.core.api.admin.amf.tibco.com/xsd">
      <ns:return>
        <ax2244:name>SystemHost</ax2244:name>
        <ax2242:singletonHost>
          <ax2242:status>Running</ax2242:status>
          <ax2242:hpaFeatureVersion>3.4.0</ax2242:hpaFeatureVersion>
          <ax2242:machineName>bpm-1</ax2242:machineName>
          <ax2242:synchronized>true</ax2242:synchronized>
        </ax2242:singletonHost>
      </ns:return>
    </ns:getHostsOnMachineResponse>
  </soapenv:Body>
</soapenv:Envelope>`

const nodesResponse = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <ns:getNodesInEnvironmentResponse xmlns:ns="http://node.amx.api.admin.amf.tibco.com" xmlns:ax217="http://types.core.api.admin.amf.tibco.com/xsd" xmlns:ax220="http://node.amx.api.admin.amf.tibco.com/xsd">
      <ns:return>
        <ax220:pagination>
          <ax217:totalItems>2</ax217:totalItems>
        </ax220:pagination>
        <ax220:nodeSummary>
          <ax217:id>11</ax217:id>
          <ax217:name>BPMNode</ax217:name>
          <ax220:environment><ax217:name>BPMEnvironment</ax217:name></ax220:environment>
          <ax220:hostName>BPMHost</ax220:hostName>
          <ax220:machine>bpm-1</ax220:machine>
          <ax220:state>Running</ax220:state>
          <ax220:nodeTypeVersion>3.4.0</ax220:nodeTypeVersion>
          <ax220:synchronized>true</ax220:synchronized>
        </ax220:nodeSummary>
        <ax220:nodeSummary>
          <ax217:id>12</ax217:id>
          <ax217:name>BPMNode2</ax217:name>
          <ax220:environment><ax217:name>BPMEnvironment</ax217:name></ax220:environment>
          <ax220:hostName>BPMHost</ax220:hostName>
          <ax220:machine>bpm-2</ax220:machine>
          <ax220:state>Stopped</ax220:state>
          <ax220:nodeTypeVersion>3.4.0</ax220:nodeTypeVersion>
          <ax220:synchronized>false</ax220:synchronized>
        </ax220:nodeSummary>
      </ns:return>
    </ns:getNodesInEnvironmentResponse>
  </soapenv:Body>
</soapenv:Envelope>`

const appViewResponse = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <ns:getApplicationViewDetailsResponse xmlns:ns="http://application.amx.api.admin.amf.tibco.com" xmlns:ax2159="http://types.core.api.admin.amf.tibco.com/xsd" xmlns:ax2161="http://application.amx.api.admin.amf.tibco.com/xsd">
      <ns:return>
        <ax2161:appFolderDesc>
          <ax2159:id>100</ax2159:id>
          <ax2159:name>Orders</ax2159:name>
        </ax2161:appFolderDesc>
        <ax2161:appDesc>
          <ax2159:id>7</ax2159:id>
          <ax2159:name>amx.bpm.app</ax2159:name>
          <ax2161:runtimeStateEnum>Running</ax2161:runtimeStateEnum>
          <ax2161:synchronization>In Sync</ax2161:synchronization>
          <ax2161:templateVersion>4.3.0</ax2161:templateVersion>
        </ax2161:appDesc>
        <ax2161:appDesc>
          <ax2159:id>8</ax2159:id>
          <ax2159:name>com.example.billing</ax2159:name>
          <ax2161:runtimeStateEnum>Stopped</ax2161:runtimeStateEnum>
          <ax2161:synchronization>Out of Sync</ax2161:synchronization>
          <ax2161:templateVersion>1.0.2</ax2161:templateVersion>
        </ax2161:appDesc>
      </ns:return>
    </ns:getApplicationViewDetailsResponse>
  </soapenv:Body>
</soapenv:Envelope>`

const folderViewResponse = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <ns:getAppFolderViewResponse xmlns:ns="http://ui.application.amx.api.admin.amf.tibco.com" xmlns:ax2201="http://types.core.api.admin.amf.tibco.com/xsd" xmlns:ax2203="http://application.amx.api.admin.amf.tibco.com/xsd" xmlns:ax2210="http://ui.application.amx.api.admin.amf.tibco.com/xsd">
      <ns:return>
        <ax2210:folders>
          <ax2201:id>101</ax2201:id>
          <ax2201:name>Archive</ax2201:name>
          <ax2201:path>/Orders/Archive</ax2201:path>
        </ax2210:folders>
        <ax2210:applications>
          <ax2201:id>21</ax2201:id>
          <ax2201:name>com.example.orders</ax2201:name>
          <ax2203:runtimeStateEnum>Running</ax2203:runtimeStateEnum>
          <ax2203:synchronization>In Sync</ax2203:synchronization>
          <ax2203:templateVersion>2.1.0</ax2203:templateVersion>
        </ax2210:applications>
      </ns:return>
    </ns:getAppFolderViewResponse>
  </soapenv:Body>
</soapenv:Envelope>`

const emptyFolderViewResponse = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <ns:getAppFolderViewResponse xmlns:ns="http://ui.application.amx.api.admin.amf.tibco.com">
      <ns:return/>
    </ns:getAppFolderViewResponse>
  </soapenv:Body>
</soapenv:Envelope>`

const rollupResponse = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <ns:getApplicationRollupDetailsResponse xmlns:ns="http://application.amx.api.admin.amf.tibco.com" xmlns:ax2159="http://types.core.api.admin.amf.tibco.com/xsd" xmlns:ax2161="http://application.amx.api.admin.amf.tibco.com/xsd" xmlns:ax2183="http://component.amx.api.admin.amf.tibco.com/xsd">
      <ns:return>
        <ax2161:componentRollupDetails>
          <ax2183:actionStatus>Deployed</ax2183:actionStatus>
          <ax2183:nodeId><ax2159:id>11</ax2159:id><ax2159:name>BPMNode</ax2159:name></ax2183:nodeId>
          <ax2183:componentPath>amx.bpm.app/BRMComponent</ax2183:componentPath>
          <ax2183:state>Running</ax2183:state>
          <ax2183:componentVersion>4.3.0</ax2183:componentVersion>
        </ax2161:componentRollupDetails>
        <ax2161:componentRollupDetails>
          <ax2183:actionStatus>Deployed</ax2183:actionStatus>
          <ax2183:nodeId><ax2159:id>11</ax2159:id><ax2159:name>BPMNode</ax2159:name></ax2183:nodeId>
          <ax2183:componentPath>amx.bpm.app/WPComponent</ax2183:componentPath>
          <ax2183:state>Running</ax2183:state>
          <ax2183:componentVersion>4.3.0</ax2183:componentVersion>
        </ax2161:componentRollupDetails>
      </ns:return>
    </ns:getApplicationRollupDetailsResponse>
  </soapenv:Body>
</soapenv:Envelope>`

const daaResponse = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <soapenv:Body>
    <ns:getAllUploadedDAAResponse xmlns:ns="http://daa.amx.api.admin.amf.tibco.com" xmlns:ax2128="http://daa.amx.api.admin.amf.tibco.com/xsd">
      <ns:return>
        <ax2128:applicationTemplateIdVersion>orders:2.1.0</ax2128:applicationTemplateIdVersion>
        <ax2128:daaFileName>orders-2.1.0.daa</ax2128:daaFileName>
        <ax2128:daaId>501</ax2128:daaId>
        <ax2128:used>true</ax2128:used>
      </ns:return>
      <ns:return>
        <ax2128:applicationTemplateIdVersion xsi:nil="true"/>
        <ax2128:daaFileName>orders-2.0.0.daa</ax2128:daaFileName>
        <ax2128:daaId>502</ax2128:daaId>
        <ax2128:used>false</ax2128:used>
      </ns:return>
    </ns:getAllUploadedDAAResponse>
  </soapenv:Body>
</soapenv:Envelope>`

const deleteDAAResponse = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <ns:deleteDAASResponse xmlns:ns="http://daa.amx.api.admin.amf.tibco.com" xmlns:ax2133="http://types.core.api.admin.amf.tibco.com/xsd">
      <ns:return>
        <ax2133:summary>DAA orders-2.0.0.daa deleted</ax2133:summary>
      </ns:return>
    </ns:deleteDAASResponse>
  </soapenv:Body>
</soapenv:Envelope>`

const mappedAppsResponse = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <ns:getApplicationsMappedToNodeResponse xmlns:ns="http://application.amx.api.admin.amf.tibco.com" xmlns:ax2162="http://types.core.api.admin.amf.tibco.com/xsd">
      <ns:return><ax2162:id>7</ax2162:id><ax2162:name>amx.bpm.app</ax2162:name></ns:return>
      <ns:return><ax2162:id>9</ax2162:id><ax2162:name>amx.bpm.apacheds</ax2162:name></ns:return>
      <ns:return><ax2162:name>orphan</ax2162:name></ns:return>
    </ns:getApplicationsMappedToNodeResponse>
  </soapenv:Body>
</soapenv:Envelope>`

const appSummaryResponse = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <ns:getApplicationSummaryByIdResponse xmlns:ns="http://application.amx.api.admin.amf.tibco.com" xmlns:ax2162="http://types.core.api.admin.amf.tibco.com/xsd" xmlns:ax2164="http://application.amx.api.admin.amf.tibco.com/xsd">
      <ns:return>
        <ax2164:folder><ax2162:name>Platform</ax2162:name></ax2164:folder>
        <ax2164:runtimeStateDetails>
          <ax2164:node>BPMNode</ax2164:node>
          <ax2164:state>Running</ax2164:state>
        </ax2164:runtimeStateDetails>
        <ax2164:runtimeStateDetails>
          <ax2164:node>BPMNode2</ax2164:node>
          <ax2164:state>Stopped</ax2164:state>
        </ax2164:runtimeStateDetails>
        <ax2164:runtimeStateEnum>Partially Running</ax2164:runtimeStateEnum>
        <ax2164:synchronization>In Sync</ax2164:synchronization>
        <ax2164:templateVersion>4.3.0</ax2164:templateVersion>
      </ns:return>
    </ns:getApplicationSummaryByIdResponse>
  </soapenv:Body>
</soapenv:Envelope>`
