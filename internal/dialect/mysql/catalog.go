package mysql

import (
	"github.com/johndauphine/sqldialect/internal/dialect"
	"github.com/johndauphine/sqldialect/internal/sqlfrag"
)

// MySQL has no schemas beneath a database; the schema argument is the
// database name.
var catalog = dialect.Catalog{
	Tables: func(schema string) *sqlfrag.Fragment {
		return sqlfrag.New(`SELECT TABLE_NAME
FROM information_schema.TABLES
WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
ORDER BY TABLE_NAME`, schema)
	},

	Columns: func(schema, table string) *sqlfrag.Fragment {
		return sqlfrag.New(`SELECT
    COLUMN_NAME,
    DATA_TYPE AS TYPE_NAME,
    COALESCE(CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, DATETIME_PRECISION, 0) AS COLUMN_SIZE,
    CASE WHEN IS_NULLABLE = 'YES' THEN 1 ELSE 0 END AS NULLABLE,
    ORDINAL_POSITION,
    COLUMN_DEFAULT AS COLUMN_DEF,
    COLUMN_COMMENT AS REMARKS,
    CASE WHEN EXTRA LIKE '%auto_increment%' THEN 'YES' ELSE 'NO' END AS IS_AUTOINCREMENT
FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`, schema, table)
	},

	PrimaryKey: func(schema, table string) *sqlfrag.Fragment {
		return sqlfrag.New(`SELECT COLUMN_NAME, ORDINAL_POSITION AS KEY_SEQ
FROM information_schema.KEY_COLUMN_USAGE
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND CONSTRAINT_NAME = 'PRIMARY'
ORDER BY ORDINAL_POSITION`, schema, table)
	},
}
