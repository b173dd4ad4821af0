package project

// Name is the project name
const Name = "renamer"

// Version is the project version
const Version = "0.1.0"
