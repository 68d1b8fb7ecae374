package schema

// Default is the dataset schema used when no SCHEMA_FILE is configured.
// userId, env and subscribable are not listed: they have dedicated filter rules.
func Default() *Schema {
	s := &Schema{
		Table: "datasets",
		Fields: []FieldDescriptor{
			{Name: "name", Column: "name", Kind: KindString},
			{Name: "slug", Column: "slug", Kind: KindString},
			{Name: "type", Column: "type", Kind: KindString},
			{Name: "subtitle", Column: "subtitle", Kind: KindString},
			{Name: "dataPath", Column: "data_path", Kind: KindString},
			{Name: "attributesPath", Column: "attributes_path", Kind: KindString},
			{Name: "connectorType", Column: "connector_type", Kind: KindString},
			{Name: "provider", Column: "provider", Kind: KindString},
			{Name: "connectorUrl", Column: "connector_url", Kind: KindString},
			{Name: "tableName", Column: "table_name", Kind: KindString},
			{Name: "status", Column: "status", Kind: KindString},
			{Name: "mainDateField", Column: "main_date_field", Kind: KindString},
			{Name: "application", Column: "application", Kind: KindArray},
			{Name: "sources", Column: "sources", Kind: KindArray},
			{Name: "widgetRelevantProps", Column: "widget_relevant_props", Kind: KindArray},
			{Name: "layerRelevantProps", Column: "layer_relevant_props", Kind: KindArray},
			{Name: "applicationConfig", Column: "application_config", Kind: KindMixed},
			{Name: "legend", Column: "legend", Kind: KindMixed},
			{Name: "blockchain", Column: "blockchain", Kind: KindMixed},
			{Name: "published", Column: "published", Kind: KindBoolean},
			{Name: "protected", Column: "protected", Kind: KindBoolean},
			{Name: "geoInfo", Column: "geo_info", Kind: KindBoolean},
			{Name: "overwrite", Column: "overwrite", Kind: KindBoolean},
			{Name: "dataLastUpdated", Column: "data_last_updated", Kind: KindDate},
			{Name: "createdAt", Column: "created_at", Kind: KindDate},
			{Name: "updatedAt", Column: "updated_at", Kind: KindDate},
		},
	}
	if err := s.index(); err != nil {
		panic(err)
	}
	return s
}
