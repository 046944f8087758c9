package server

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/roach88/expertlog/internal/record"
)

// Document describes the HTTP surface as an OpenAPI 3 document. Identifier
// schemas follow the configured identifier kinds.
func Document(opts record.DecodeOptions) *openapi3.T {
	logID := idSchema(opts.LogIDs)
	campID := idSchema(opts.CampIDs)

	logRow := openapi3.NewObjectSchema().
		WithProperty("logid", logID).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("date", openapi3.NewStringSchema())
	for _, c := range []string{"totalmen", "totalwomen", "totalsyringe", "totalpipe", "totalsandwich", "totalsoup"} {
		logRow.WithProperty(c, countSchema())
	}
	logRow.WithProperty("notes", openapi3.NewStringSchema())

	campRow := openapi3.NewObjectSchema().
		WithProperty("campid", campID).
		WithProperty("logid", logID).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("date", openapi3.NewStringSchema()).
		WithProperty("latitude", openapi3.NewFloat64Schema()).
		WithProperty("longitude", openapi3.NewFloat64Schema())
	for _, c := range []string{"men", "women", "syringe", "pipe", "sandwich", "soup"} {
		campRow.WithProperty(c, countSchema())
	}
	campRow.
		WithProperty("type", openapi3.NewStringSchema()).
		WithProperty("campnotes", openapi3.NewStringSchema()).
		WithProperty("timestamp", openapi3.NewStringSchema())

	logBody := openapi3.NewObjectSchema().
		WithProperty("logId", logID).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("date", openapi3.NewStringSchema())
	for _, c := range []string{"totalMen", "totalWomen", "totalSyringe", "totalPipe", "totalSandwich", "totalSoup"} {
		logBody.WithProperty(c, countSchema())
	}
	logBody.WithProperty("notes", openapi3.NewStringSchema())
	logBody.Required = []string{"name", "date"}

	campBody := openapi3.NewObjectSchema().
		WithProperty("campId", campID).
		WithProperty("logId", logID).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("date", openapi3.NewStringSchema()).
		WithProperty("latitude", openapi3.NewFloat64Schema()).
		WithProperty("longitude", openapi3.NewFloat64Schema())
	for _, c := range []string{"men", "women", "syringe", "pipe", "sandwich", "soup"} {
		campBody.WithProperty(c, countSchema())
	}
	campBody.
		WithProperty("type", openapi3.NewStringSchema()).
		WithProperty("campNotes", openapi3.NewStringSchema()).
		WithProperty("timestamp", openapi3.NewStringSchema())
	campBody.Required = []string{"logId", "name", "date"}

	errBody := openapi3.NewObjectSchema().WithProperty("error", openapi3.NewStringSchema())
	saveLogResult := openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("logId", logID).
		WithProperty("replicated", openapi3.NewBoolSchema())
	saveCampResult := openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("campId", campID).
		WithProperty("replicated", openapi3.NewBoolSchema())
	deleteResult := openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("replicated", openapi3.NewBoolSchema())

	jsonError := func(desc string) *openapi3.Response {
		return openapi3.NewResponse().WithDescription(desc).WithJSONSchema(errBody)
	}
	idParam := openapi3.NewPathParameter("id").WithSchema(logID)

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "expertlog",
			Description: "Field activity logs and camp visits, written to a primary and an optional secondary store.",
			Version:     "1.0.0",
		},
	}

	root := operation("getStatus", "Liveness message")
	root.AddResponse(http.StatusOK, openapi3.NewResponse().
		WithDescription("Service is running").
		WithContent(openapi3.NewContentWithSchema(openapi3.NewStringSchema(), []string{"text/plain"})))
	doc.AddOperation("/", http.MethodGet, root)

	saveLog := operation("saveLog", "Save an expert log")
	saveLog.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(logBody)}
	saveLog.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Saved").WithJSONSchema(saveLogResult))
	saveLog.AddResponse(http.StatusBadRequest, jsonError("Invalid body"))
	saveLog.AddResponse(http.StatusConflict, jsonError("Identifier already exists"))
	saveLog.AddResponse(http.StatusInternalServerError, jsonError("Store failure"))
	doc.AddOperation("/save", http.MethodPost, saveLog)

	saveCamp := operation("saveCamp", "Save an expert camp")
	saveCamp.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(campBody)}
	saveCamp.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Saved").WithJSONSchema(saveCampResult))
	saveCamp.AddResponse(http.StatusBadRequest, jsonError("Invalid body"))
	saveCamp.AddResponse(http.StatusConflict, jsonError("Identifier already exists"))
	saveCamp.AddResponse(http.StatusUnprocessableEntity, jsonError("Referenced log does not exist"))
	saveCamp.AddResponse(http.StatusInternalServerError, jsonError("Store failure"))
	doc.AddOperation("/save-camp", http.MethodPost, saveCamp)

	listLogs := operation("listLogs", "List expert logs")
	listLogs.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("All logs").
		WithJSONSchema(openapi3.NewArraySchema().WithItems(logRow)))
	listLogs.AddResponse(http.StatusInternalServerError, jsonError("Store failure"))
	doc.AddOperation("/data", http.MethodGet, listLogs)

	listCamps := operation("listCamps", "List expert camps")
	listCamps.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("All camps").
		WithJSONSchema(openapi3.NewArraySchema().WithItems(campRow)))
	listCamps.AddResponse(http.StatusInternalServerError, jsonError("Store failure"))
	doc.AddOperation("/camps", http.MethodGet, listCamps)

	logCamps := operation("listLogCamps", "List the camps of one log")
	logCamps.AddParameter(idParam)
	logCamps.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Camps of the log").
		WithJSONSchema(openapi3.NewArraySchema().WithItems(campRow)))
	logCamps.AddResponse(http.StatusBadRequest, jsonError("Invalid identifier"))
	logCamps.AddResponse(http.StatusInternalServerError, jsonError("Store failure"))
	doc.AddOperation("/logs/{id}/camps", http.MethodGet, logCamps)

	deleteLog := operation("deleteLog", "Delete a log and its camps")
	deleteLog.AddParameter(idParam)
	deleteLog.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Deleted").WithJSONSchema(deleteResult))
	deleteLog.AddResponse(http.StatusBadRequest, jsonError("Invalid identifier"))
	deleteLog.AddResponse(http.StatusNotFound, jsonError("No such log"))
	deleteLog.AddResponse(http.StatusInternalServerError, jsonError("Store failure"))
	doc.AddOperation("/logs/{id}", http.MethodDelete, deleteLog)

	for path, id := range map[string]string{"/view-db": "viewLogs", "/view-camps": "viewCamps"} {
		view := operation(id, "HTML table for manual inspection")
		view.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("HTML document").
			WithContent(openapi3.NewContentWithSchema(openapi3.NewStringSchema(), []string{"text/html"})))
		doc.AddOperation(path, http.MethodGet, view)
	}

	metrics := operation("getMetrics", "Prometheus metrics")
	metrics.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Text exposition format").
		WithContent(openapi3.NewContentWithSchema(openapi3.NewStringSchema(), []string{"text/plain"})))
	doc.AddOperation("/metrics", http.MethodGet, metrics)

	docOp := operation("getOpenAPI", "This document")
	docOp.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("OpenAPI document").
		WithJSONSchema(openapi3.NewObjectSchema()))
	doc.AddOperation("/openapi.json", http.MethodGet, docOp)

	return doc
}

func operation(id, summary string) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	return op
}

func idSchema(kind record.IDKind) *openapi3.Schema {
	if kind == record.KindToken {
		return openapi3.NewStringSchema()
	}
	return openapi3.NewInt64Schema()
}

func countSchema() *openapi3.Schema {
	return openapi3.NewInt64Schema().WithMin(0)
}
