package log

// FieldComponent tags every record with the emitting component.
const FieldComponent = "component"

// ComponentApp is the process-level component used by the default logger.
const ComponentApp = "app"
