package xrm

// PropertyChangedHandler is called after a property of sender changed.
type PropertyChangedHandler func(sender any, propertyName string)

// PropertyChangingHandler is called before a property of sender changes.
type PropertyChangingHandler func(sender any, propertyName string)

// PropertyChangedNotifier is implemented by generated entity types.
type PropertyChangedNotifier interface {
	OnPropertyChanged(propertyName string)
}

// PropertyChangingNotifier is implemented by generated entity types.
type PropertyChangingNotifier interface {
	OnPropertyChanging(propertyName string)
}
