package store

const schema = `
-- Objects table (groups and datasets of the hierarchy)
CREATE TABLE IF NOT EXISTS objects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    parent TEXT NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('group', 'dataset')),
    dtype TEXT NOT NULL DEFAULT '',
    shape BLOB,
    data BLOB
);

-- Attributes table (named values attached to an object)
CREATE TABLE IF NOT EXISTS attributes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    object_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    dtype TEXT NOT NULL,
    shape BLOB,
    data BLOB,
    FOREIGN KEY (object_id) REFERENCES objects(id) ON DELETE CASCADE,
    UNIQUE(object_id, name)
);

CREATE INDEX IF NOT EXISTS idx_objects_parent ON objects(parent);
CREATE INDEX IF NOT EXISTS idx_attributes_object ON attributes(object_id);
`
