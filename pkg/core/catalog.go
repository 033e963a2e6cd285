package core

// TableDescriptor is one harvested table row.
type TableDescriptor struct {
	TableSchema string `json:"table_schema" yaml:"table_schema"`
	TableName   string `json:"table_name" yaml:"table_name"`
}

// ColumnDescriptor is one harvested column row.
type ColumnDescriptor struct {
	TableSchema      string `json:"table_schema" yaml:"table_schema"`
	TableName        string `json:"table_name" yaml:"table_name"`
	ColumnName       string `json:"column_name" yaml:"column_name"`
	OrdinalPosition  int    `json:"ordinal_position" yaml:"ordinal_position"`
	NativeDomainName string `json:"native_domain_name" yaml:"native_domain_name"`
	Length           int    `json:"length" yaml:"length"`
	IsNullable       bool   `json:"is_nullable" yaml:"is_nullable"`
	IsDeferred       bool   `json:"is_deferred" yaml:"is_deferred"`
}

// IndexDescriptor is one harvested index key column row.
type IndexDescriptor struct {
	TableSchema     string `json:"table_schema" yaml:"table_schema"`
	TableName       string `json:"table_name" yaml:"table_name"`
	IndexName       string `json:"index_name" yaml:"index_name"`
	ColumnName      string `json:"column_name" yaml:"column_name"`
	OrdinalPosition int    `json:"ordinal_position" yaml:"ordinal_position"`
	IsUnique        bool   `json:"is_unique" yaml:"is_unique"`
	IsDescending    bool   `json:"is_descending" yaml:"is_descending"`
}

// ForeignKeyDescriptor is one harvested foreign key column pair.
type ForeignKeyDescriptor struct {
	ConstraintSchema  string `json:"constraint_schema" yaml:"constraint_schema"`
	ConstraintName    string `json:"constraint_name" yaml:"constraint_name"`
	SourceTableSchema string `json:"source_table_schema" yaml:"source_table_schema"`
	SourceTableName   string `json:"source_table_name" yaml:"source_table_name"`
	SourceColumnName  string `json:"source_column_name" yaml:"source_column_name"`
	TargetTableSchema string `json:"target_table_schema" yaml:"target_table_schema"`
	TargetTableName   string `json:"target_table_name" yaml:"target_table_name"`
	TargetColumnName  string `json:"target_column_name" yaml:"target_column_name"`
	OrdinalPosition   int    `json:"ordinal_position" yaml:"ordinal_position"`
}
