package mssql

import (
	"github.com/johndauphine/sqldialect/internal/dialect"
	"github.com/johndauphine/sqldialect/internal/sqlfrag"
)

var catalog = dialect.Catalog{
	Tables: func(schema string) *sqlfrag.Fragment {
		return sqlfrag.New(`SELECT TABLE_NAME
FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
ORDER BY TABLE_NAME`, schema)
	},

	// identity columns are reported as "<type> identity", the way the JDBC
	// driver's metadata does it
	Columns: func(schema, table string) *sqlfrag.Fragment {
		return sqlfrag.New(`SELECT
    c.COLUMN_NAME,
    c.DATA_TYPE + CASE
        WHEN COLUMNPROPERTY(OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME)), c.COLUMN_NAME, 'IsIdentity') = 1
        THEN ' identity' ELSE '' END AS TYPE_NAME,
    COALESCE(c.CHARACTER_MAXIMUM_LENGTH, c.NUMERIC_PRECISION, 0) AS COLUMN_SIZE,
    CASE WHEN c.IS_NULLABLE = 'YES' THEN 1 ELSE 0 END AS NULLABLE,
    c.ORDINAL_POSITION,
    c.COLUMN_DEFAULT AS COLUMN_DEF,
    CAST(ep.value AS nvarchar(4000)) AS REMARKS
FROM INFORMATION_SCHEMA.COLUMNS c
LEFT JOIN sys.extended_properties ep
    ON ep.major_id = OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME))
    AND ep.minor_id = COLUMNPROPERTY(ep.major_id, c.COLUMN_NAME, 'ColumnId')
    AND ep.name = 'MS_Description'
WHERE c.TABLE_SCHEMA = ? AND c.TABLE_NAME = ?
ORDER BY c.ORDINAL_POSITION`, schema, table)
	},

	PrimaryKey: func(schema, table string) *sqlfrag.Fragment {
		return sqlfrag.New(`SELECT c.COLUMN_NAME, c.ORDINAL_POSITION AS KEY_SEQ
FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE c
    ON c.CONSTRAINT_NAME = tc.CONSTRAINT_NAME
    AND c.TABLE_SCHEMA = tc.TABLE_SCHEMA
    AND c.TABLE_NAME = tc.TABLE_NAME
WHERE tc.TABLE_SCHEMA = ? AND tc.TABLE_NAME = ?
    AND tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
ORDER BY c.ORDINAL_POSITION`, schema, table)
	},
}
